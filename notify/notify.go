// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/Jordancode-cyber/EV-test-app/models"
)

var ErrNoAddress = errors.New("voter has no address for this method")

// Backend names accepted by Open
const (
	KindDiscard = "discard"
	KindFile    = "file"
	KindConsole = "console"
)

// Sender delivers one code to one voter
type Sender interface {
	Send(ctx context.Context, voter models.EligibleVoter, method, code string) error
}

// Open builds the backend named by kind. The file backend appends to path,
// creating it readable by the owner only. Console writes to stdout. The
// returned func releases anything Open acquired.
func Open(kind, path string, stdout io.Writer) (Sender, func() error, error) {
	noop := func() error { return nil }

	switch kind {
	case KindDiscard, "":
		return Discard{}, noop, nil
	case KindConsole:
		return NewConsole(stdout), noop, nil
	case KindFile:
		if path == "" {
			return nil, nil, errors.New("file notifier needs a path")
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open notify file: %w", err)
		}
		return NewConsole(f), f.Close, nil
	}
	return nil, nil, fmt.Errorf("unsupported notifier: %s", kind)
}

// Console writes each code to an io.Writer. It stands in for a real
// email/SMS gateway: a spool file in deployments, stdout in development.
// Codes go to the writer only, never to the application log.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Send delivers code to the voter's address for method
func (c *Console) Send(ctx context.Context, voter models.EligibleVoter, method, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	to, err := Address(voter, method)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = fmt.Fprintf(c.w, "[%s] to %s: your EVote verification code is %s\n", method, to, code)
	if err != nil {
		return fmt.Errorf("write notification: %w", err)
	}
	return nil
}

// Discard accepts every code and sends nothing
type Discard struct{}

func (Discard) Send(context.Context, models.EligibleVoter, string, string) error {
	return nil
}

// Address resolves where a code for method should go. In-app delivery is
// addressed by registration number.
func Address(voter models.EligibleVoter, method string) (string, error) {
	switch method {
	case models.MethodEmail:
		if voter.Email == nil || *voter.Email == "" {
			return "", fmt.Errorf("%w: %s", ErrNoAddress, method)
		}
		return *voter.Email, nil
	case models.MethodSMS:
		if voter.Phone == nil || *voter.Phone == "" {
			return "", fmt.Errorf("%w: %s", ErrNoAddress, method)
		}
		return *voter.Phone, nil
	case models.MethodInApp:
		return voter.RegNo, nil
	}
	return "", fmt.Errorf("unsupported method: %s", method)
}
