package usecase

import (
	"context"

	"ui-verbs/internal/action"
	"ui-verbs/internal/entity"
	"ui-verbs/internal/locator"
)

// ElementService maps each verb onto its action handler.
type ElementService struct {
	exec *action.Executor
}

func NewElementService(exec *action.Executor) *ElementService {
	return &ElementService{exec: exec}
}

func (s *ElementService) Click(ctx context.Context, spec locator.Spec) (entity.Outcome, error) {
	return s.exec.Perform(ctx, action.Click{}, spec)
}

func (s *ElementService) ClickAndHold(ctx context.Context, spec locator.Spec) (entity.Outcome, error) {
	return s.exec.Perform(ctx, action.ClickAndHold{}, spec)
}

func (s *ElementService) DoubleClick(ctx context.Context, spec locator.Spec) (entity.Outcome, error) {
	return s.exec.Perform(ctx, action.DoubleClick{}, spec)
}

func (s *ElementService) Hover(ctx context.Context, spec locator.Spec) (entity.Outcome, error) {
	return s.exec.Perform(ctx, action.Hover{}, spec)
}

func (s *ElementService) PressKey(ctx context.Context, spec locator.Spec, key entity.Key) (entity.Outcome, error) {
	return s.exec.Perform(ctx, action.PressKey{Key: key}, spec)
}

func (s *ElementService) Clear(ctx context.Context, spec locator.Spec) (entity.Outcome, error) {
	return s.exec.Perform(ctx, action.Clear{}, spec)
}

// Type replaces the field content with text.
func (s *ElementService) Type(ctx context.Context, spec locator.Spec, text string) (entity.Outcome, error) {
	return s.exec.Perform(ctx, action.SendText{Text: text, ClearFirst: true}, spec)
}

// SendText appends text to whatever the field holds.
func (s *ElementService) SendText(ctx context.Context, spec locator.Spec, text string) (entity.Outcome, error) {
	return s.exec.Perform(ctx, action.SendText{Text: text}, spec)
}

func (s *ElementService) Text(ctx context.Context, spec locator.Spec) (entity.Outcome, error) {
	return s.exec.Perform(ctx, action.GetText{}, spec)
}

func (s *ElementService) Attribute(ctx context.Context, spec locator.Spec, name string) (entity.Outcome, error) {
	return s.exec.Perform(ctx, action.GetAttribute{Name: name}, spec)
}

func (s *ElementService) DropdownValue(ctx context.Context, spec locator.Spec) (entity.Outcome, error) {
	return s.exec.Perform(ctx, action.GetDropdownValue{}, spec)
}

func (s *ElementService) IsDisplayed(ctx context.Context, spec locator.Spec) (entity.Outcome, error) {
	return s.exec.Perform(ctx, action.State{Which: entity.ActionIsDisplayed}, spec)
}

func (s *ElementService) IsEnabled(ctx context.Context, spec locator.Spec) (entity.Outcome, error) {
	return s.exec.Perform(ctx, action.State{Which: entity.ActionIsEnabled}, spec)
}

func (s *ElementService) IsSelected(ctx context.Context, spec locator.Spec) (entity.Outcome, error) {
	return s.exec.Perform(ctx, action.State{Which: entity.ActionIsSelected}, spec)
}
