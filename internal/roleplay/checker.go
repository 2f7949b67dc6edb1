package roleplay

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Muhsiinn/Jonas-AI/internal/llm"
	"github.com/Muhsiinn/Jonas-AI/internal/prompts"
)

// defaultCheckTimeout bounds one background end check. These are short
// yes/no completions; anything slower than this is not worth waiting for
// because the next chat turn will trigger a fresh check anyway.
const defaultCheckTimeout = 30 * time.Second

// Checker decides off the request path whether a conversation has reached
// its goal. Each chat reply kicks one check; a YES verdict is parked in the
// flag store for the next chat turn to consume.
type Checker struct {
	providers Providers
	prompts   *prompts.Store
	flags     EndFlags
	timeout   time.Duration
}

// NewChecker creates a background end checker. When the provider source
// carries an llm.Config (as llm.Factory does), its AuxTimeout bounds each
// check; otherwise the default applies.
func NewChecker(providers Providers, store *prompts.Store, flags EndFlags) *Checker {
	timeout := defaultCheckTimeout
	if c, ok := providers.(interface{ Config() llm.Config }); ok && c.Config().AuxTimeout > 0 {
		timeout = c.Config().AuxTimeout
	}
	return &Checker{providers: providers, prompts: store, flags: flags, timeout: timeout}
}

// Kick starts a detached check for the given reply. It returns immediately;
// the verdict lands in the flag store. Failures are logged and dropped, the
// conversation just keeps going.
func (c *Checker) Kick(userID, day, goalText, reply string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		done, err := c.Check(ctx, goalText, reply)
		if err != nil {
			slog.Warn("background end check failed", "user", userID, "error", err)
			return
		}
		if !done {
			return
		}
		if err := c.flags.SetShouldEnd(ctx, userID, day); err != nil {
			slog.Warn("persist should-end flag failed", "user", userID, "error", err)
		}
	}()
}

// Check asks the model whether the conversation should end, given the goal
// and the last assistant reply. The answer counts as yes only when the
// upper-cased, trimmed response starts with "YES".
func (c *Checker) Check(ctx context.Context, goalText, reply string) (bool, error) {
	ctx = llm.WithPurpose(ctx, "roleplay-end-check")

	prompt, err := c.prompts.Render("end_check_prompt", map[string]string{
		"goal_text": goalText,
		"reply":     reply,
	})
	if err != nil {
		return false, err
	}

	provider, err := c.providers.Provider(ctx, llm.ReasonModel)
	if err != nil {
		return false, err
	}

	resp, err := provider.Generate(ctx, llm.Request{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: prompt}},
	})
	if err != nil {
		return false, err
	}

	verdict := strings.ToUpper(resp.Text())
	return strings.HasPrefix(verdict, "YES"), nil
}
