package prompts

import (
	"context"
	"errors"
	"strings"
)

var ErrEmptyTemplate = errors.New("template is empty")

var defaults = map[string]string{
	Interpretation: DefaultInterpretation,
}

// Known: только у встроенных промптов есть потребитель
func Known(name string) bool {
	_, ok := defaults[name]
	return ok
}

type service struct {
	repo Repo
}

func NewService(repo Repo) Service {
	return &service{repo: repo}
}

func (s *service) ListAll(ctx context.Context) ([]*Prompt, error) {
	return s.repo.ListAll(ctx)
}

// Get отдаёт сохранённый шаблон или встроенный по умолчанию
func (s *service) Get(ctx context.Context, name string) (*Prompt, error) {
	p, err := s.repo.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	return &Prompt{Name: name, Template: defaults[name]}, nil
}

func (s *service) Update(ctx context.Context, name, template string) (*Prompt, error) {
	template = strings.TrimSpace(template)
	if template == "" {
		return nil, ErrEmptyTemplate
	}
	return s.repo.Upsert(ctx, name, template)
}

func (s *service) Render(ctx context.Context, name, text string) (string, error) {
	p, err := s.Get(ctx, name)
	if err != nil {
		return "", err
	}
	return Fill(p.Template, text), nil
}

// Fill подставляет текст; если плейсхолдера нет, дописывает в конец
func Fill(template, text string) string {
	if template == "" {
		template = DefaultInterpretation
	}
	if strings.Contains(template, Placeholder) {
		return strings.ReplaceAll(template, Placeholder, text)
	}
	return strings.TrimRight(template, " ") + " " + text
}
