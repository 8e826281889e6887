package console

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/duelhall/duel-server-go/internal/chat"
	"github.com/duelhall/duel-server-go/internal/duelerr"
	"github.com/duelhall/duel-server-go/internal/numberduel"
	"github.com/duelhall/duel-server-go/internal/secretword"
)

// FormatError renders err as "error <KIND> <message> key=value...", with
// metadata keys sorted. Errors from outside the domain render as UNKNOWN.
func FormatError(err error) string {
	var de *duelerr.Error
	if !errors.As(err, &de) {
		return fmt.Sprintf("error %s %s", duelerr.KindUnknown, err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "error %s %s", de.Kind, de.Error())
	keys := lo.Keys(de.Metadata)
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, de.Metadata[k])
	}
	return b.String()
}

func (c *Console) printEntry(e chat.Entry) {
	c.printf("#%d [%s] %s: %s\n", e.ID, e.Role, e.Sender, e.Content)
}

func (c *Console) printSnapshot(s secretword.Snapshot) {
	c.printf("stage=%s admin=%s player_one=%s player_two=%s secret_set=%t messages=%d/%d next_actor=%s\n",
		s.Stage, orDash(s.Admin), orDash(s.PlayerOne), orDash(s.PlayerTwo),
		s.SecretSet, s.TotalMessages, s.MaxMessages, lo.Ternary(s.NextActor == secretword.RoleNone, "-", string(s.NextActor)))
}

func (c *Console) printView(v numberduel.View) {
	c.printf("phase=%s turn=%s winner=%s\n", v.Phase, orDash(v.CurrentTurn), orDash(v.Winner))
	for _, p := range v.Players {
		number := "?"
		if p.Number != nil {
			number = fmt.Sprint(*p.Number)
		}
		c.printf("  %s number=%s submitted=%t discovered=%t\n", p.ID, number, p.Submitted, p.Discovered)
	}
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
