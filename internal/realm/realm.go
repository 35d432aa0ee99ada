// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ConnRealm Contributors

package realm

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/alphapenguin/connrealm/internal/observability"
	"github.com/alphapenguin/connrealm/pkg/errutil"
)

// Info identifies this realm implementation in logs and version strings.
const Info = "ConnectionRealm/1.0"

// Name is the short implementation name.
const Name = "ConnectionRealm"

// Authenticator is the capability interface exposed to host authentication
// pipelines. Besides Authenticate it carries two host-required hooks that
// intentionally always come back empty, since this realm never stores
// credentials locally.
type Authenticator interface {
	// Authenticate verifies the credential by connecting to the backing
	// store as that credential. Any returned error means "no principal";
	// errors never panic through and are safe to log.
	Authenticate(ctx context.Context, username, password string) (*Principal, error)

	// LookupPassword returns the stored password for a user. Always
	// ("", false) for this realm.
	LookupPassword(username string) (string, bool)

	// LookupPrincipal returns the stored principal for a user. Always nil
	// for this realm.
	LookupPrincipal(username string) *Principal
}

// Realm authenticates credentials by delegating to the backing store's own
// connection authentication. All state is immutable after construction, so a
// single Realm serves concurrent Authenticate calls without synchronization.
type Realm struct {
	cfg      Config
	registry Registry
	drivers  Drivers
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewRealm creates a Realm with a no-op logger. The registry is required in
// factory mode and the driver facility in direct mode; an unconfigured
// Config is accepted and fails every attempt deterministically.
func NewRealm(cfg Config, reg Registry, drivers Drivers) (*Realm, error) {
	return newRealm(cfg, reg, drivers, slog.New(slog.DiscardHandler))
}

// NewRealmWithLogger creates a Realm with the provided logger.
func NewRealmWithLogger(cfg Config, reg Registry, drivers Drivers, logger *slog.Logger) (*Realm, error) {
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return newRealm(cfg, reg, drivers, logger)
}

func newRealm(cfg Config, reg Registry, drivers Drivers, logger *slog.Logger) (*Realm, error) {
	switch cfg.Mode() {
	case ModeFactory:
		if reg == nil {
			return nil, oops.Errorf("registry is required in factory mode")
		}
	case ModeDirect:
		if drivers == nil {
			return nil, oops.Errorf("driver facility is required in direct mode")
		}
	}
	return &Realm{
		cfg:      cfg,
		registry: reg,
		drivers:  drivers,
		logger:   logger,
		tracer:   otel.Tracer("connrealm"),
	}, nil
}

// Config returns the realm configuration.
func (r *Realm) Config() Config {
	return r.cfg
}

// Authenticate runs one attempt: select the acquisition mode, open a
// connection as the supplied credential, resolve roles over it, and release
// the connection. The connection is closed exactly once on every exit path.
func (r *Realm) Authenticate(ctx context.Context, username, password string) (principal *Principal, err error) {
	ctx, span := r.tracer.Start(ctx, "realm.authenticate")
	defer span.End()

	start := time.Now()
	log := r.logger.With(
		"realm", Info,
		"attempt_id", ulid.Make().String(),
		"username", username,
		"mode", r.cfg.Mode().String(),
	)

	defer func() {
		outcome := Outcome(err)
		observability.RecordAuthAttempt(outcome)
		observability.ObserveAuthDuration(outcome, time.Since(start))
		span.SetAttributes(attribute.String("realm.outcome", outcome))
	}()

	var conn Conn
	switch r.cfg.Mode() {
	case ModeFactory:
		conn, err = r.acquireFromFactory(ctx, log, username, password)
	case ModeDirect:
		conn, err = r.acquireDirect(ctx, log, username, password)
	default:
		err = oops.Code(CodeNotConfigured).
			Errorf("neither resource_name nor connection_address is configured")
		errutil.LogError(log, "realm is not configured", err)
	}
	if err != nil {
		return nil, err
	}

	principal, err = r.resolveRoles(ctx, log, conn, username, password)

	if closeErr := conn.Close(ctx); closeErr != nil {
		// The attempt outcome is already decided; a close failure is
		// operational noise, not an authentication result.
		log.Warn("failed to close store connection", "error", closeErr.Error())
	}
	if err != nil {
		return nil, err
	}

	log.Debug("authentication succeeded", "role_count", len(principal.Roles))
	return principal, nil
}

// acquireFromFactory resolves the named factory from the registry and asks
// it for a connection authenticated as the supplied credential.
func (r *Realm) acquireFromFactory(ctx context.Context, log *slog.Logger, username, password string) (Conn, error) {
	scope := ScopeGlobal
	if r.cfg.UseLocalScope {
		scope = ScopeLocal
	}

	factory, err := r.registry.Lookup(r.cfg.ResourceName, scope)
	if err != nil {
		lookupErr := oops.Code(CodeLookupFailed).
			With("resource_name", r.cfg.ResourceName).
			With("scope", scope.String()).
			Wrap(err)
		errutil.LogError(log, "connection factory lookup failed", lookupErr)
		return nil, lookupErr
	}
	if factory == nil {
		lookupErr := oops.Code(CodeLookupFailed).
			With("resource_name", r.cfg.ResourceName).
			With("scope", scope.String()).
			Errorf("registry returned no factory")
		errutil.LogError(log, "connection factory lookup failed", lookupErr)
		return nil, lookupErr
	}

	conn, err := factory.Connect(ctx, username, password)
	if err != nil {
		rejected := oops.Code(CodeAuthRejected).
			With("resource_name", r.cfg.ResourceName).
			Wrap(err)
		errutil.LogWarn(log, "store rejected credential", rejected)
		return nil, rejected
	}
	if conn == nil {
		// A broken factory, not a bad credential, so log at error.
		brokenErr := oops.Code(CodeAuthRejected).
			With("resource_name", r.cfg.ResourceName).
			Errorf("factory returned a nil connection")
		errutil.LogError(log, "factory returned no connection", brokenErr)
		return nil, brokenErr
	}
	return conn, nil
}

// acquireDirect looks up the named driver and opens a connection to the
// configured address as the supplied credential.
func (r *Realm) acquireDirect(ctx context.Context, log *slog.Logger, username, password string) (Conn, error) {
	drv, err := r.drivers.Lookup(r.cfg.DriverName)
	if err != nil {
		cfgErr := oops.Code(CodeDriverNotFound).
			With("driver_name", r.cfg.DriverName).
			Wrap(err)
		errutil.LogError(log, "driver is not registered", cfgErr)
		return nil, cfgErr
	}

	conn, err := drv.Open(ctx, r.cfg.ConnectionAddress, username, password)
	if err != nil {
		rejected := oops.Code(CodeAuthRejected).
			With("driver_name", r.cfg.DriverName).
			With("connection_address", r.cfg.ConnectionAddress).
			Wrap(err)
		errutil.LogWarn(log, "store rejected credential", rejected)
		return nil, rejected
	}
	if conn == nil {
		// A broken driver, not a bad credential, so log at error.
		brokenErr := oops.Code(CodeAuthRejected).
			With("driver_name", r.cfg.DriverName).
			Errorf("driver returned a nil connection")
		errutil.LogError(log, "driver returned no connection", brokenErr)
		return nil, brokenErr
	}
	return conn, nil
}

// LookupPassword always returns ("", false): no password is ever stored.
func (r *Realm) LookupPassword(string) (string, bool) {
	return "", false
}

// LookupPrincipal always returns nil: identity exists only as proof of a
// live connection, never as a stored record.
func (r *Realm) LookupPrincipal(string) *Principal {
	return nil
}

// Info returns the realm identification string.
func (r *Realm) Info() string {
	return Info
}

// Name returns the short implementation name.
func (r *Realm) Name() string {
	return Name
}

// Compile-time interface check.
var _ Authenticator = (*Realm)(nil)
