package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/duelhall/duel-server-go/internal/chat"
	"github.com/duelhall/duel-server-go/internal/duelerr"
	"github.com/duelhall/duel-server-go/internal/numberduel"
	"github.com/duelhall/duel-server-go/internal/secretword"
	"github.com/duelhall/duel-server-go/internal/session"
)

type command struct {
	usage string
	help  string
	run   func(c *Console, args string) error
}

type usageError struct{}

func (usageError) Error() string { return "bad arguments" }

var errUsage = usageError{}

var errNoSession = errors.New("no session selected (try new or use)")

var commands = map[string]command{
	"new":      {"new secret|duel|chat", "start a session and select it", (*Console).cmdNew},
	"use":      {"use <id-prefix>", "select an existing session", (*Console).cmdUse},
	"sessions": {"sessions", "list sessions", (*Console).cmdSessions},
	"close":    {"close", "remove the selected session", (*Console).cmdClose},

	"create": {"create <admin> <player-one> <player-two>", "(re)start a secret-word game", (*Console).cmdCreate},
	"secret": {"secret <admin> <word>", "assign the secret word", (*Console).cmdSecret},
	"ask":    {"ask <player> <question>", "player one asks a question", (*Console).cmdAsk},
	"answer": {"answer <player> [guess=<word>] <answer>", "player two answers, optionally guessing", (*Console).cmdAnswer},
	"check":  {"check <word>", "test a guess against the secret", (*Console).cmdCheck},
	"reveal": {"reveal <requester>", "show the secret to the admin or player two", (*Console).cmdReveal},

	"clear":    {"clear [requester]", "clear the message history", (*Console).cmdClear},
	"max":      {"max [requester] <n>", "change the history capacity", (*Console).cmdMax},
	"messages": {"messages [offset] [limit]", "page through the history", (*Console).cmdMessages},
	"message":  {"message <id>", "show one message", (*Console).cmdMessage},
	"show":     {"show", "show the selected session", (*Console).cmdShow},

	"join":     {"join <player>", "register for a number duel", (*Console).cmdJoin},
	"submit":   {"submit <player> <number>", "lock in a number", (*Console).cmdSubmit},
	"discover": {"discover <player>", "reveal the opponent's number", (*Console).cmdDiscover},

	"send": {"send <sender> <role> <message>", "post to a chat room", (*Console).cmdSend},
	"info": {"info", "show chat room totals", (*Console).cmdInfo},
}

func (c *Console) selected() (session.Info, error) {
	if c.current == "" {
		return session.Info{}, errNoSession
	}
	return c.mgr.Get(c.current)
}

func (c *Console) cmdNew(args string) error {
	if args == "" {
		return errUsage
	}
	kind, err := session.ParseKind(args)
	if err != nil {
		return err
	}
	info, err := c.mgr.Create(kind)
	if err != nil {
		return err
	}
	c.current = info.ID
	c.printf("session %s %s\n", info.ID, info.Kind)
	return nil
}

func (c *Console) cmdUse(args string) error {
	if args == "" {
		return errUsage
	}
	matches := lo.Filter(c.mgr.List(), func(info session.Info, _ int) bool {
		return strings.HasPrefix(info.ID, args)
	})
	switch len(matches) {
	case 0:
		_, err := c.mgr.Get(args)
		return err
	case 1:
		c.current = matches[0].ID
		c.printf("session %s %s\n", matches[0].ID, matches[0].Kind)
		return nil
	default:
		return fmt.Errorf("session prefix %q is ambiguous (%d matches)", args, len(matches))
	}
}

func (c *Console) cmdSessions(string) error {
	list := c.mgr.List()
	if len(list) == 0 {
		c.printf("no sessions\n")
		return nil
	}
	for _, info := range list {
		marker := ""
		if info.ID == c.current {
			marker = " *"
		}
		c.printf("%s %s%s\n", info.ID, info.Kind, marker)
	}
	return nil
}

func (c *Console) cmdClose(string) error {
	if c.current == "" {
		return errNoSession
	}
	c.mgr.Remove(c.current)
	c.printf("closed %s\n", c.current)
	c.current = ""
	return nil
}

func (c *Console) cmdCreate(args string) error {
	f, rest := cutFields(args, 3)
	if f[2] == "" || rest != "" {
		return errUsage
	}
	return c.mgr.WithSecretWord(c.current, func(g *secretword.Game) error {
		snap, err := g.CreateGame(f[0], f[1], f[2])
		if err != nil {
			return err
		}
		c.printSnapshot(snap)
		return nil
	})
}

func (c *Console) cmdSecret(args string) error {
	f, word := cutFields(args, 1)
	if f[0] == "" {
		return errUsage
	}
	return c.mgr.WithSecretWord(c.current, func(g *secretword.Game) error {
		snap, err := g.SetSecret(f[0], word)
		if err != nil {
			return err
		}
		c.printSnapshot(snap)
		return nil
	})
}

func (c *Console) cmdAsk(args string) error {
	f, question := cutFields(args, 1)
	if f[0] == "" {
		return errUsage
	}
	return c.mgr.WithSecretWord(c.current, func(g *secretword.Game) error {
		entry, err := g.SubmitQuestion(f[0], question)
		if err != nil {
			return err
		}
		c.printEntry(entry)
		return nil
	})
}

func (c *Console) cmdAnswer(args string) error {
	f, rest := cutFields(args, 1)
	if f[0] == "" {
		return errUsage
	}
	var guess *string
	if strings.HasPrefix(rest, "guess=") {
		g, answer := cutFields(rest, 1)
		guess = lo.ToPtr(strings.TrimPrefix(g[0], "guess="))
		rest = answer
	}
	return c.mgr.WithSecretWord(c.current, func(g *secretword.Game) error {
		res, err := g.SubmitAnswer(f[0], rest, guess)
		if err != nil {
			return err
		}
		c.printEntry(res.Entry)
		if guess != nil {
			c.printf("guess %s\n", lo.Ternary(res.Correct, "correct", "wrong"))
		}
		return nil
	})
}

func (c *Console) cmdCheck(args string) error {
	if args == "" {
		return errUsage
	}
	return c.mgr.WithSecretWord(c.current, func(g *secretword.Game) error {
		ok, err := g.CheckGuess(args)
		if err != nil {
			return err
		}
		c.printf("%s\n", lo.Ternary(ok, "match", "no match"))
		return nil
	})
}

func (c *Console) cmdReveal(args string) error {
	if args == "" {
		return errUsage
	}
	return c.mgr.WithSecretWord(c.current, func(g *secretword.Game) error {
		secret, ok, err := g.GetSecret(args)
		if err != nil {
			return err
		}
		if !ok {
			c.printf("secret withheld\n")
			return nil
		}
		c.printf("secret %s\n", secret)
		return nil
	})
}

func (c *Console) cmdClear(args string) error {
	info, err := c.selected()
	if err != nil {
		return err
	}
	switch info.Kind {
	case session.KindSecretWord:
		if args == "" {
			return errUsage
		}
		return c.mgr.WithSecretWord(info.ID, func(g *secretword.Game) error {
			if err := g.ClearHistory(args); err != nil {
				return err
			}
			c.printf("ok\n")
			return nil
		})
	default:
		return c.mgr.WithChat(info.ID, func(r *chat.Room) error {
			r.ClearHistory()
			c.printf("ok\n")
			return nil
		})
	}
}

func (c *Console) cmdMax(args string) error {
	info, err := c.selected()
	if err != nil {
		return err
	}
	switch info.Kind {
	case session.KindSecretWord:
		f, rest := cutFields(args, 2)
		n, ok := parseUint32(f[1])
		if !ok || rest != "" {
			return errUsage
		}
		return c.mgr.WithSecretWord(info.ID, func(g *secretword.Game) error {
			if err := g.SetMaxMessages(f[0], n); err != nil {
				return err
			}
			c.printf("max_messages=%d\n", n)
			return nil
		})
	default:
		n, ok := parseUint32(args)
		if !ok {
			return errUsage
		}
		return c.mgr.WithChat(info.ID, func(r *chat.Room) error {
			if err := r.SetMaxMessages(n); err != nil {
				return err
			}
			c.printf("max_messages=%d\n", n)
			return nil
		})
	}
}

func (c *Console) cmdMessages(args string) error {
	f, rest := cutFields(args, 2)
	if rest != "" {
		return errUsage
	}
	var offset, limit *uint32
	for i, dst := range []**uint32{&offset, &limit} {
		if f[i] == "" {
			continue
		}
		n, ok := parseUint32(f[i])
		if !ok {
			return errUsage
		}
		*dst = &n
	}

	info, err := c.selected()
	if err != nil {
		return err
	}
	var page []chat.Entry
	switch info.Kind {
	case session.KindSecretWord:
		err = c.mgr.WithSecretWord(info.ID, func(g *secretword.Game) error {
			page = g.Messages(offset, limit)
			return nil
		})
	default:
		err = c.mgr.WithChat(info.ID, func(r *chat.Room) error {
			page = r.Messages(offset, limit)
			return nil
		})
	}
	if err != nil {
		return err
	}
	if len(page) == 0 {
		c.printf("no messages\n")
	}
	for _, entry := range page {
		c.printEntry(entry)
	}
	return nil
}

func (c *Console) cmdMessage(args string) error {
	id, err := strconv.ParseUint(args, 10, 64)
	if err != nil {
		return errUsage
	}
	info, err := c.selected()
	if err != nil {
		return err
	}
	switch info.Kind {
	case session.KindSecretWord:
		return c.mgr.WithSecretWord(info.ID, func(g *secretword.Game) error {
			entry, err := g.MessageByID(id)
			if err != nil {
				return err
			}
			c.printEntry(entry)
			return nil
		})
	default:
		return c.mgr.WithChat(info.ID, func(r *chat.Room) error {
			entry, ok := r.MessageByID(id)
			if !ok {
				return duelerr.WithMetadata(duelerr.KindMessageNotFound, "message not found",
					map[string]string{"id": args})
			}
			c.printEntry(entry)
			return nil
		})
	}
}

func (c *Console) cmdShow(string) error {
	info, err := c.selected()
	if err != nil {
		return err
	}
	switch info.Kind {
	case session.KindSecretWord:
		return c.mgr.WithSecretWord(info.ID, func(g *secretword.Game) error {
			c.printSnapshot(g.Snapshot())
			return nil
		})
	case session.KindNumberDuel:
		return c.mgr.WithNumberDuel(info.ID, func(g *numberduel.Game) error {
			c.printView(g.View())
			return nil
		})
	default:
		return c.cmdInfo("")
	}
}

func (c *Console) cmdJoin(args string) error {
	if args == "" {
		return errUsage
	}
	return c.mgr.WithNumberDuel(c.current, func(g *numberduel.Game) error {
		view, err := g.RegisterPlayer(args)
		if err != nil {
			return err
		}
		c.printView(view)
		return nil
	})
}

func (c *Console) cmdSubmit(args string) error {
	f, rest := cutFields(args, 2)
	n, err := strconv.ParseInt(f[1], 10, 64)
	if err != nil || rest != "" {
		return errUsage
	}
	return c.mgr.WithNumberDuel(c.current, func(g *numberduel.Game) error {
		view, err := g.SubmitNumber(f[0], n)
		if err != nil {
			return err
		}
		c.printView(view)
		return nil
	})
}

func (c *Console) cmdDiscover(args string) error {
	if args == "" {
		return errUsage
	}
	return c.mgr.WithNumberDuel(c.current, func(g *numberduel.Game) error {
		d, err := g.DiscoverNumber(args)
		if err != nil {
			return err
		}
		c.printf("discovered %d\n", d.Value)
		c.printView(d.View)
		return nil
	})
}

func (c *Console) cmdSend(args string) error {
	f, content := cutFields(args, 2)
	if f[1] == "" {
		return errUsage
	}
	return c.mgr.WithChat(c.current, func(r *chat.Room) error {
		entry, err := r.SendMessage(f[0], f[1], content)
		if err != nil {
			return err
		}
		c.printEntry(entry)
		return nil
	})
}

func (c *Console) cmdInfo(string) error {
	return c.mgr.WithChat(c.current, func(r *chat.Room) error {
		info := r.Info()
		c.printf("messages=%d/%d\n", info.TotalMessages, info.MaxMessages)
		return nil
	})
}

func parseUint32(s string) (uint32, bool) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}
