package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/ayush/swapspace/internal/client"
	"github.com/ayush/swapspace/internal/models"
)

const demoNotice = "DEMO MODE: the SwapSpace API is unreachable. You are seeing a placeholder user and no changes will be saved."

type app struct {
	api     *client.API
	session *client.Session
	out     io.Writer
	errOut  io.Writer
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintln(w, `Usage: swapspace [flags] <command> [args]

Commands:
  status                         show who is logged in
  register <username> <email>    create an account (prompts for the password)
  login <email>                  log in (prompts for the password)
  logout                         forget the stored token
  items list [--q s] [--category c]
  items get <id>
  items mine
  items create --title ... --description ... --condition ... --category ... --image-url ...
  items update <id> --title ... (all five fields)
  items delete <id>
  categories                     list categories in use

Flags:`)
	fmt.Fprint(w, flagSet.FlagUsages())
}

// dispatch resolves the session, then runs one command.
func (a *app) dispatch(ctx context.Context, args []string) error {
	if err := a.session.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if a.session.Snapshot().Demo {
			fmt.Fprintln(a.errOut, demoNotice)
		}
	}()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "status":
		return a.status()
	case "login":
		return a.login(ctx, rest)
	case "register":
		return a.register(ctx, rest)
	case "logout":
		if err := a.session.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Logged out")
		return nil
	case "items":
		return a.items(ctx, rest)
	case "categories":
		cats, err := a.api.Categories(ctx)
		if err != nil {
			return err
		}
		for _, c := range cats {
			fmt.Fprintln(a.out, c)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) status() error {
	snap := a.session.Snapshot()
	switch snap.State {
	case client.Authenticated:
		fmt.Fprintf(a.out, "Logged in as %s <%s>\n", snap.User.Username, snap.User.Email)
	case client.Demo:
		fmt.Fprintf(a.out, "Demo user %s <%s> (not a real session)\n", snap.User.Username, snap.User.Email)
	default:
		fmt.Fprintln(a.out, "Not logged in")
		if snap.Err != nil {
			fmt.Fprintf(a.out, "Previous session ended: %v\n", snap.Err)
		}
	}
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
	password := fs.String("password", "", "account password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: swapspace login <email> [--password <password>]")
	}
	pw, err := a.password(*password)
	if err != nil {
		return err
	}
	if err := a.session.Login(ctx, fs.Arg(0), pw); err != nil {
		return err
	}
	return a.afterAuth("Login successful")
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("register", pflag.ContinueOnError)
	password := fs.String("password", "", "account password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("usage: swapspace register <username> <email> [--password <password>]")
	}
	pw, err := a.password(*password)
	if err != nil {
		return err
	}
	if err := a.session.Register(ctx, fs.Arg(0), fs.Arg(1), pw); err != nil {
		return err
	}
	return a.afterAuth("User registered successfully")
}

func (a *app) afterAuth(msg string) error {
	if !a.session.Snapshot().Demo {
		fmt.Fprintln(a.out, msg)
	}
	return a.status()
}

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// password returns flagValue, or prompts on the terminal without echo when
// the flag was not given.
func (a *app) password(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(a.errOut, "Password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(a.errOut)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

func (a *app) items(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: swapspace items <list|get|mine|create|update|delete>")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		fs := pflag.NewFlagSet("items list", pflag.ContinueOnError)
		var filter models.ItemFilter
		fs.StringVar(&filter.Query, "q", "", "substring of title or description")
		fs.StringVar(&filter.Category, "category", "", "exact category")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		list, err := a.api.ListItems(ctx, filter)
		if err != nil {
			return err
		}
		a.printItems(list)
		return nil

	case "get":
		if len(rest) != 1 {
			return errors.New("usage: swapspace items get <id>")
		}
		item, err := a.api.GetItem(ctx, rest[0])
		if err != nil {
			return err
		}
		return a.printJSON(item)

	case "mine":
		token, err := a.session.Token()
		if err != nil {
			return err
		}
		list, err := a.api.MyItems(ctx, token)
		if err != nil {
			return err
		}
		a.printItems(list)
		return nil

	case "create":
		fields, _, err := parseItemFields("items create", rest)
		if err != nil {
			return err
		}
		token, err := a.session.Token()
		if err != nil {
			return err
		}
		res, err := a.api.CreateItem(ctx, token, fields)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, res.Message)
		return a.printJSON(res.Item)

	case "update":
		fields, pos, err := parseItemFields("items update", rest)
		if err != nil {
			return err
		}
		if len(pos) != 1 {
			return errors.New("usage: swapspace items update <id> --title ... --description ... --condition ... --category ... --image-url ...")
		}
		token, err := a.session.Token()
		if err != nil {
			return err
		}
		res, err := a.api.UpdateItem(ctx, token, pos[0], fields)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, res.Message)
		return a.printJSON(res.Item)

	case "delete":
		if len(rest) != 1 {
			return errors.New("usage: swapspace items delete <id>")
		}
		token, err := a.session.Token()
		if err != nil {
			return err
		}
		res, err := a.api.DeleteItem(ctx, token, rest[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, res.Message)
		return nil

	default:
		return fmt.Errorf("unknown items command %q", sub)
	}
}

// parseItemFields reads the five item flags and returns the positional
// arguments left over.
func parseItemFields(name string, args []string) (models.ItemFields, []string, error) {
	var f models.ItemFields
	var condition string
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVar(&f.Title, "title", "", "item title")
	fs.StringVar(&f.Description, "description", "", "item description")
	fs.StringVar(&condition, "condition", "", conditionHelp())
	fs.StringVar(&f.Category, "category", "", "item category")
	fs.StringVar(&f.ImageURL, "image-url", "", "image URL")
	if err := fs.Parse(args); err != nil {
		return f, nil, err
	}
	f.Condition = models.Condition(condition)
	return f, fs.Args(), nil
}

func conditionHelp() string {
	names := make([]string, len(models.Conditions))
	for i, c := range models.Conditions {
		names[i] = string(c)
	}
	return "one of: " + strings.Join(names, ", ")
}

func (a *app) printItems(list []models.Item) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCONDITION\tCATEGORY\tOWNER")
	for _, it := range list {
		owner := it.OwnerID
		if it.Owner != nil {
			owner = it.Owner.Username
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", it.ID, it.Title, it.Condition, it.Category, owner)
	}
	tw.Flush()
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
