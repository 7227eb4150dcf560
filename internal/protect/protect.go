// Package protect applies an open password and permission restrictions to a
// rendered PDF. It is best effort: any failure yields the unprotected input.
package protect

import (
	"context"
	"errors"
	"fmt"
	"os"

	"dails-report/internal/metrics"

	"go.uber.org/zap"
)

const (
	OutcomeApplied = "applied"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Credentials are handed to an Encrypter together with the permission bits.
type Credentials struct {
	User        string
	Owner       string
	Permissions uint32
}

// Encrypter writes an encrypted copy of inFile to outFile.
type Encrypter interface {
	Encrypt(inFile, outFile string, c Credentials) error
}

type Options struct {
	Enabled bool
	Policy  Policy
	// OwnerPassword defaults to the user password when empty.
	OwnerPassword string
	// TempDir defaults to os.TempDir().
	TempDir string
}

type Result struct {
	Data     []byte
	Password *string
	Applied  bool
	Outcome  string
}

type Protector struct {
	opts    Options
	enc     Encrypter
	log     *zap.Logger
	metrics *metrics.Metrics
}

// New returns a Protector. A nil Encrypter disables protection.
func New(opts Options, enc Encrypter, log *zap.Logger, m *metrics.Metrics) *Protector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Protector{opts: opts, enc: enc, log: log, metrics: m}
}

// WillAttempt reports whether Protect would try to encrypt for this national id.
func (p *Protector) WillAttempt(nationalID string) bool {
	return p != nil && p.opts.Enabled && p.enc != nil && nationalID != ""
}

// Protect encrypts data with nationalID as the open password. The returned
// Result always carries a usable document.
func (p *Protector) Protect(ctx context.Context, data []byte, nationalID string) (res Result) {
	res = Result{Data: data, Outcome: OutcomeSkipped}
	if !p.WillAttempt(nationalID) {
		p.record(res.Outcome)
		return res
	}

	defer func() {
		if r := recover(); r != nil {
			p.log.Warn("pdf protection panicked, returning unprotected document", zap.Any("panic", r))
			res = Result{Data: data, Outcome: OutcomeFailed}
		}
		p.record(res.Outcome)
	}()

	if err := ctx.Err(); err != nil {
		p.log.Warn("pdf protection skipped", zap.Error(err))
		return Result{Data: data, Outcome: OutcomeFailed}
	}

	out, err := p.encrypt(data, nationalID)
	if err != nil {
		p.log.Warn("pdf protection failed, returning unprotected document", zap.Error(err))
		return Result{Data: data, Outcome: OutcomeFailed}
	}

	password := nationalID
	return Result{Data: out, Password: &password, Applied: true, Outcome: OutcomeApplied}
}

func (p *Protector) encrypt(data []byte, user string) ([]byte, error) {
	owner := p.opts.OwnerPassword
	if owner == "" {
		owner = user
	}

	src, err := os.CreateTemp(p.opts.TempDir, "decl-src-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create source file: %w", err)
	}
	defer os.Remove(src.Name())

	_, werr := src.Write(data)
	if err := errors.Join(werr, src.Close()); err != nil {
		return nil, fmt.Errorf("write source file: %w", err)
	}

	dst, err := os.CreateTemp(p.opts.TempDir, "decl-out-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	defer os.Remove(dst.Name())
	if err := dst.Close(); err != nil {
		return nil, fmt.Errorf("close output file: %w", err)
	}

	creds := Credentials{User: user, Owner: owner, Permissions: p.opts.Policy.Flags()}
	if err := p.enc.Encrypt(src.Name(), dst.Name(), creds); err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}

	out, err := os.ReadFile(dst.Name())
	if err != nil {
		return nil, fmt.Errorf("read output file: %w", err)
	}
	if len(out) == 0 {
		return nil, errors.New("encrypter produced an empty file")
	}
	return out, nil
}

func (p *Protector) record(outcome string) {
	if p != nil {
		p.metrics.IncProtection(outcome)
	}
}
