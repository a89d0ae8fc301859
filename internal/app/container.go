package app

import (
	"context"

	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/config"
	datasetrepo "github.com/Ramsey-B/clover/internal/repositories/dataset"
	resultrepo "github.com/Ramsey-B/clover/internal/repositories/matchresult"
	recordrepo "github.com/Ramsey-B/clover/internal/repositories/record"
	rulesetrepo "github.com/Ramsey-B/clover/internal/repositories/ruleset"
	runrepo "github.com/Ramsey-B/clover/internal/repositories/run"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/reconcile"
)

// buildContainer registers everything the route handlers resolve through
// ectoinject.GetContext.
func (a *App) buildContainer(context.Context) error {
	container, err := ectoinject.NewDIDefaultContainer()
	if err != nil {
		return err
	}

	if err := ectoinject.RegisterInstance[ectologger.Logger](container, a.logger); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*config.Config](container, a.cfg); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*datasetrepo.Repository](container, a.repos.datasets); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*recordrepo.Repository](container, a.repos.records); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*rulesetrepo.Repository](container, a.repos.ruleSets); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*runrepo.Repository](container, a.repos.runs); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*resultrepo.Repository](container, a.repos.results); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*events.Emitter](container, a.emitter); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*reconcile.Service](container, a.service); err != nil {
		return err
	}

	return nil
}
