package usecase

import (
	"ui-verbs/internal/action"
	"ui-verbs/internal/ports"
	"ui-verbs/internal/resolver"
	"ui-verbs/internal/usecase/adapters"
	"ui-verbs/internal/wait"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	Elements adapters.ElementService
	Verify   adapters.VerifyService
	Page     adapters.PageService
	Waits    adapters.WaitService
}

type Params struct {
	fx.In

	Logger   *zap.Logger
	Driver   ports.Driver
	Executor *action.Executor
	Resolver *resolver.Resolver
	Waiter   *wait.Waiter
}

func NewUsecase(params Params) *Service {
	factory := newServiceFactory(params)

	return &Service{
		Elements: factory.CreateElementService(),
		Verify:   factory.CreateVerifyService(),
		Page:     factory.CreatePageService(),
		Waits:    factory.CreateWaitService(),
	}
}
