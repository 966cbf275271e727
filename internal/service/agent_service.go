package service

import (
	"context"
	"strings"

	"github.com/wildtrail/safaridesk/internal/model"
	appErr "github.com/wildtrail/safaridesk/internal/pkg/errors"
	"github.com/wildtrail/safaridesk/internal/pkg/timeutil"
	"github.com/wildtrail/safaridesk/internal/repo"
)

type AgentService struct {
	agents *repo.AgentRepo
}

func NewAgentService(agents *repo.AgentRepo) *AgentService {
	return &AgentService{agents: agents}
}

type AgentInput struct {
	Name    string
	Email   string
	Phone   string
	Country string
}

func (in *AgentInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Country = strings.TrimSpace(in.Country)
	if in.Name == "" {
		return appErr.ErrInvalid
	}
	return nil
}

func (s *AgentService) Create(ctx context.Context, input AgentInput) (*model.Agent, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}
	now := timeutil.NowUnix()
	agent := &model.Agent{
		ID:      newID(),
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Country: input.Country,
		Ctime:   now,
		Mtime:   now,
	}
	if err := s.agents.Create(ctx, agent); err != nil {
		return nil, err
	}
	return agent, nil
}

func (s *AgentService) Update(ctx context.Context, id string, input AgentInput) (*model.Agent, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}
	agent, err := s.agents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	agent.Name = input.Name
	agent.Email = input.Email
	agent.Phone = input.Phone
	agent.Country = input.Country
	agent.Mtime = timeutil.NowUnix()
	if err := s.agents.Update(ctx, agent); err != nil {
		return nil, err
	}
	return agent, nil
}

func (s *AgentService) Delete(ctx context.Context, id string) error {
	return s.agents.Delete(ctx, id)
}

func (s *AgentService) Get(ctx context.Context, id string) (*model.Agent, error) {
	return s.agents.GetByID(ctx, id)
}

func (s *AgentService) List(ctx context.Context, query string, limit, offset uint) ([]model.Agent, error) {
	return s.agents.List(ctx, query, limit, offset)
}
