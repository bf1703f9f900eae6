package authorization

import (
	"fmt"
	"log/slog"

	httpadapter "gatekeeper/contexts/identity-access/authorization-gate/adapters/http"
	"gatekeeper/contexts/identity-access/authorization-gate/adapters/memory"
	"gatekeeper/contexts/identity-access/authorization-gate/application/queries"
	"gatekeeper/contexts/identity-access/authorization-gate/application/workers"
	domainerrors "gatekeeper/contexts/identity-access/authorization-gate/domain/errors"
	"gatekeeper/contexts/identity-access/authorization-gate/domain/valueobjects"
	"gatekeeper/contexts/identity-access/authorization-gate/ports"
)

// DefaultAdminUserID is used when no admin id is configured.
const DefaultAdminUserID = "1"

// Module is the authorization-gate composition root exposed to runtime wiring.
type Module struct {
	Gate     httpadapter.Gate
	Sessions ports.SessionStore
	Sweeper  workers.SessionSweeper
	Store    *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Oracle      ports.MembershipOracle
	Sessions    ports.SessionStore
	Clock       ports.Clock
	AdminUserID string
	Failure     httpadapter.FailureFunc
	Logger      *slog.Logger
}

// NewModule wires the gate policies and middleware using explicit ports.
func NewModule(deps Dependencies) (Module, error) {
	adminID, err := valueobjects.NewUserID(deps.AdminUserID)
	if err != nil {
		return Module{}, fmt.Errorf("%w: %v", domainerrors.ErrInvalidAdminID, err)
	}

	gate := httpadapter.Gate{
		Authenticated: queries.IsAuthenticatedUseCase{
			Logger: deps.Logger,
		},
		Member: queries.IsMemberUseCase{
			Oracle: deps.Oracle,
			Logger: deps.Logger,
		},
		Admin: queries.IsAdminUseCase{
			AdminUserID: adminID,
			Logger:      deps.Logger,
		},
		Failure: deps.Failure,
		Logger:  deps.Logger,
	}

	return Module{
		Gate:     gate,
		Sessions: deps.Sessions,
		Sweeper: workers.SessionSweeper{
			Sessions: deps.Sessions,
			Clock:    deps.Clock,
			Logger:   deps.Logger,
		},
	}, nil
}

// NewInMemoryModule builds a development/testing module with in-memory adapters.
func NewInMemoryModule(adminUserID string, logger *slog.Logger) (Module, error) {
	if adminUserID == "" {
		adminUserID = DefaultAdminUserID
	}
	store := memory.NewStore()
	module, err := NewModule(Dependencies{
		Oracle:      store,
		Sessions:    store,
		Clock:       store,
		AdminUserID: adminUserID,
		Logger:      logger,
	})
	if err != nil {
		return Module{}, err
	}
	module.Store = store
	return module, nil
}
