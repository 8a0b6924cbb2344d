// Package authz is the single checkpoint for every disclosure or mutation of
// a patient's documents. Callers consult Gate inside the same transaction
// as the operation it guards.
package authz

import (
	"context"
	"log/slog"

	"medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
	"medledger/pkg/requestcontext"
)

type Decision string

const (
	Authorized Decision = "authorized"
	Denied     Decision = "denied"
)

// GrantChecker answers whether a grant currently exists.
type GrantChecker interface {
	IsAuthorized(ctx context.Context, patientID domain.PatientID, doctorID domain.DoctorID) (bool, error)
}

type Gate struct {
	checker GrantChecker
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

func New(checker GrantChecker, opts ...Option) *Gate {
	g := &Gate{checker: checker, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check evaluates the live grant set. It never caches: every call reads the
// grant relation as of ctx's transaction.
func (g *Gate) Check(ctx context.Context, patientID domain.PatientID, doctorID domain.DoctorID) (Decision, error) {
	if patientID.IsNil() || doctorID.IsNil() {
		g.metrics.observe(Denied)
		return Denied, nil
	}
	ok, err := g.checker.IsAuthorized(ctx, patientID, doctorID)
	if err != nil {
		g.metrics.incErrors()
		return Denied, err
	}
	decision := Denied
	if ok {
		decision = Authorized
	}
	g.metrics.observe(decision)
	return decision, nil
}

// Require is Check with Denied reported as Forbidden.
func (g *Gate) Require(ctx context.Context, patientID domain.PatientID, doctorID domain.DoctorID) error {
	decision, err := g.Check(ctx, patientID, doctorID)
	if err != nil {
		return err
	}
	if decision != Authorized {
		g.logger.WarnContext(ctx, "authorization denied",
			"patient_id", patientID,
			"doctor_id", doctorID,
			"request_id", requestcontext.RequestID(ctx),
		)
		return dErrors.New(dErrors.CodeForbidden, "doctor is not authorized for this patient")
	}
	return nil
}
