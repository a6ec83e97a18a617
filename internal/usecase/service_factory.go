package usecase

import (
	"ui-verbs/internal/usecase/adapters"
)

type serviceFactory struct {
	deps Params
}

func newServiceFactory(deps Params) *serviceFactory {
	return &serviceFactory{
		deps: deps,
	}
}

func (f *serviceFactory) CreateElementService() adapters.ElementService {
	return NewElementService(f.deps.Executor)
}

func (f *serviceFactory) CreateWaitService() adapters.WaitService {
	return NewWaitService(f.deps.Logger, f.deps.Driver, f.deps.Resolver, f.deps.Waiter)
}

func (f *serviceFactory) CreateVerifyService() adapters.VerifyService {
	return NewVerifyService(VerifyServiceParams{
		Logger:   f.deps.Logger,
		Driver:   f.deps.Driver,
		Executor: f.deps.Executor,
		Resolver: f.deps.Resolver,
		Waiter:   f.deps.Waiter,
	})
}

func (f *serviceFactory) CreatePageService() adapters.PageService {
	return NewPageService(f.deps.Logger, f.deps.Driver, f.deps.Waiter)
}
