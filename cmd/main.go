package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ergochat/readline"
	"github.com/google/uuid"

	"github.com/adorsys-gis/bankstore"
	"github.com/adorsys-gis/bankstore/entities"
)

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),
	readline.PcItem("open"),
	readline.PcItem("show"),
	readline.PcItem("trail"),
	readline.PcItem("exists"),
	readline.PcItem("unique"),
	readline.PcItem("count"),
	readline.PcItem("exit"),
	readline.PcItem("quit"),
)

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

// inspector erases the store's type parameter so the shell can hold
// every kind in one map.
type inspector interface {
	Len() int
	Exists(id uuid.UUID) bool
	Describe(ctx context.Context, id uuid.UUID) (string, error)
	Trail(ctx context.Context, id uuid.UUID) ([]bankstore.AuditRecord, error)
	ByUnique(key uint64) (uuid.UUID, bool)
}

type storeView[T any, PT entities.Ptr[T]] struct {
	s *bankstore.Store[T, PT]
}

func (v storeView[T, PT]) Len() int                 { return v.s.Len() }
func (v storeView[T, PT]) Exists(id uuid.UUID) bool { return v.s.ExistsByID(id) }

func (v storeView[T, PT]) Describe(ctx context.Context, id uuid.UUID) (string, error) {
	items, err := v.s.LoadBatch(ctx, []uuid.UUID{id})
	if err != nil {
		return "", err
	}
	if items[0] == nil {
		return "", fmt.Errorf("no live entity %s", id)
	}
	return fmt.Sprintf("%+v", *items[0]), nil
}

func (v storeView[T, PT]) Trail(ctx context.Context, id uuid.UUID) ([]bankstore.AuditRecord, error) {
	return v.s.AuditTrail(ctx, id)
}

func (v storeView[T, PT]) ByUnique(key uint64) (uuid.UUID, bool) {
	return v.s.FindByUniqueKey(key)
}

type shell struct {
	db     *bankstore.DB
	stores map[string]inspector
}

func view[T any, PT entities.Ptr[T]](db *bankstore.DB, stores map[string]inspector) error {
	s, err := bankstore.OpenStore[T, PT](db)
	if err != nil {
		return err
	}
	stores[s.Kind().String()] = storeView[T, PT]{s}
	return nil
}

func (sh *shell) open(dir string) error {
	if sh.db != nil {
		return fmt.Errorf("already open at %s", sh.db.Dir())
	}
	db, err := bankstore.Open(dir, bankstore.Options{})
	if err != nil {
		return err
	}
	stores := map[string]inspector{}
	for _, fn := range []func(*bankstore.DB, map[string]inspector) error{
		view[entities.Person, *entities.Person],
		view[entities.Location, *entities.Location],
		view[entities.Messaging, *entities.Messaging],
		view[entities.EntityReference, *entities.EntityReference],
		view[entities.Country, *entities.Country],
		view[entities.CountrySubdivision, *entities.CountrySubdivision],
		view[entities.Locality, *entities.Locality],
		view[entities.Account, *entities.Account],
	} {
		if err = fn(db, stores); err != nil {
			_ = db.Close()
			return err
		}
	}
	sh.db = db
	sh.stores = stores
	return nil
}

func (sh *shell) store(kind string) (inspector, error) {
	if sh.db == nil {
		return nil, fmt.Errorf("no store open, use: open <dir>")
	}
	s, ok := sh.stores[kind]
	if !ok {
		names := make([]string, 0, len(sh.stores))
		for n := range sh.stores {
			names = append(names, n)
		}
		return nil, fmt.Errorf("unknown kind %q, have %s", kind, strings.Join(names, " "))
	}
	return s, nil
}

func (sh *shell) run(cmd string, args []string) error {
	ctx := context.Background()
	switch cmd {
	case "help":
		fmt.Println("open <dir> | show <kind> <uuid>... | trail <kind> <uuid> |" +
			" exists <kind> <uuid>... | unique <kind> <hex-key> | count [kind]")
	case "open":
		if len(args) != 1 {
			return fmt.Errorf("usage: open <dir>")
		}
		if err := sh.open(args[0]); err != nil {
			return err
		}
		fmt.Printf("opened %s\n", args[0])
	case "show":
		s, err := sh.store(arg0(args))
		if err != nil {
			return err
		}
		for _, a := range args[1:] {
			id, err := uuid.Parse(a)
			if err != nil {
				return err
			}
			desc, err := s.Describe(ctx, id)
			if err != nil {
				return err
			}
			fmt.Println(desc)
		}
	case "trail":
		s, err := sh.store(arg0(args))
		if err != nil {
			return err
		}
		if len(args) != 2 {
			return fmt.Errorf("usage: trail <kind> <uuid>")
		}
		id, err := uuid.Parse(args[1])
		if err != nil {
			return err
		}
		trail, err := s.Trail(ctx, id)
		if err != nil {
			return err
		}
		for _, rec := range trail {
			state := fmt.Sprintf("hash %016x", uint64(rec.Hash))
			if rec.Tombstone() {
				state = "deleted"
			}
			fmt.Printf("v%d\t%s\tlog %s\t%d snapshot bytes\n",
				rec.Version, state, rec.AuditLogID, len(rec.Snapshot))
		}
	case "exists":
		s, err := sh.store(arg0(args))
		if err != nil {
			return err
		}
		for _, a := range args[1:] {
			id, err := uuid.Parse(a)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%v\n", id, s.Exists(id))
		}
	case "unique":
		s, err := sh.store(arg0(args))
		if err != nil {
			return err
		}
		if len(args) != 2 {
			return fmt.Errorf("usage: unique <kind> <hex-key>")
		}
		key, err := strconv.ParseUint(args[1], 16, 64)
		if err != nil {
			return err
		}
		if id, ok := s.ByUnique(key); ok {
			fmt.Println(id)
		} else {
			fmt.Println("no match")
		}
	case "count":
		if len(args) == 1 {
			s, err := sh.store(args[0])
			if err != nil {
				return err
			}
			fmt.Println(s.Len())
			break
		}
		if sh.db == nil {
			return fmt.Errorf("no store open, use: open <dir>")
		}
		for name, s := range sh.stores {
			fmt.Printf("%s\t%d\n", name, s.Len())
		}
	default:
		return fmt.Errorf("command unknown: %s", cmd)
	}
	return nil
}

func arg0(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func main() {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "◌ ",
		HistoryFile:     "/tmp/bankstore.history",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()
	l.CaptureExitSignal()

	sh := &shell{}
	if len(os.Args) > 1 {
		if err := sh.open(os.Args[1]); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(-1)
		}
	}

	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		args := strings.Split(line, " ")
		cmd := args[0]
		args = args[1:]
		if cmd == "exit" || cmd == "quit" {
			break
		}
		if err = sh.run(cmd, args); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error executing %s: %s\n", cmd, err.Error())
		}
	}
	if sh.db != nil {
		if err := sh.db.Close(); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(-1)
		}
	}
}
