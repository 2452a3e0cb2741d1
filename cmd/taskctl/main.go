package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/vncsmyrnk/tasks/internal/client"
	"github.com/vncsmyrnk/tasks/internal/core/domain"
)

const usage = `usage: taskctl [-server URL] <command> [args]

commands:
  register                 create an account and log in
  login                    log in
  logout                   forget the stored session
  whoami                   show the logged-in user
  list [-q text] [-status all|pending|completed]
  add <title>              create a task
  toggle <id>              flip a task between pending and completed
  rm <id>                  delete a task
`

type app struct {
	session *client.Session
	api     *client.API
	in      *bufio.Reader
	out     io.Writer
	route   string

	// readSecret reads a line without echoing it; nil falls back to in.
	readSecret func() (string, error)
}

func main() {
	server := flag.String("server", envOr("TASKS_API_URL", "http://localhost:8080"), "API base URL")
	tokenPath := flag.String("token-file", "", "Where the session token is stored")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if *tokenPath == "" {
		path, err := client.DefaultTokenPath()
		if err != nil {
			fatal(err)
		}
		*tokenPath = path
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	session := client.NewSession(client.NewFileTokenStore(*tokenPath))
	a := &app{
		session: session,
		api:     client.NewAPI(*server, session),
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		a.readSecret = func() (string, error) {
			secret, err := term.ReadPassword(fd)
			return string(secret), err
		}
	}

	if err := session.Restore(ctx, a.api); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	if err := a.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		fatal(err)
	}
}

func (a *app) Navigate(route string) {
	a.route = route
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.register(ctx)
	case "login":
		return a.login(ctx)
	case "logout":
		view := client.NewDashboardView(a.api, a.session, a)
		if err := view.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Logged out")
		return nil
	}

	if a.session.Gate() != client.GateAllow {
		return errors.New("not logged in, run `taskctl login` first")
	}

	if cmd == "whoami" {
		u := a.session.Snapshot().User
		if u == nil {
			return errors.New("session user unknown, run `taskctl login` again")
		}
		fmt.Fprintf(a.out, "%s <%s>\n", u.Name, u.Email)
		return nil
	}

	dash := client.NewDashboardView(a.api, a.session, a)
	if err := dash.Load(ctx); err != nil {
		return errors.New(dash.Error)
	}

	switch cmd {
	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		fs.StringVar(&dash.Search, "q", "", "Case-insensitive title filter")
		fs.StringVar(&dash.StatusFilter, "status", client.StatusAll, "all, pending or completed")
		if err := fs.Parse(args); err != nil {
			return err
		}
		a.printTasks(dash.Visible())
		return nil
	case "add":
		dash.Title = strings.Join(args, " ")
		if strings.TrimSpace(dash.Title) == "" {
			return errors.New("a title is required")
		}
		if err := dash.Create(ctx); err != nil {
			return errors.New(dash.Error)
		}
		a.printTasks(dash.Visible())
		return nil
	case "toggle":
		task, err := findTask(dash.Tasks, args)
		if err != nil {
			return err
		}
		if err := dash.Toggle(ctx, task); err != nil {
			return errors.New(dash.Error)
		}
		a.printTasks(dash.Visible())
		return nil
	case "rm":
		task, err := findTask(dash.Tasks, args)
		if err != nil {
			return err
		}
		if err := dash.Delete(ctx, task.ID); err != nil {
			return errors.New(dash.Error)
		}
		a.printTasks(dash.Visible())
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) register(ctx context.Context) error {
	view := client.NewRegisterView(a.api, a.session, a)
	view.Name = a.prompt("Name")
	view.Email = a.prompt("Email")
	password, err := a.promptSecret("Password")
	if err != nil {
		return err
	}
	view.Password = password
	if err := view.Submit(ctx); err != nil {
		return errors.New(view.Error)
	}
	fmt.Fprintf(a.out, "Welcome, %s\n", view.Name)
	return nil
}

func (a *app) login(ctx context.Context) error {
	view := client.NewLoginView(a.api, a.session, a)
	view.Email = a.prompt("Email")
	password, err := a.promptSecret("Password")
	if err != nil {
		return err
	}
	view.Password = password
	if err := view.Submit(ctx); err != nil {
		return errors.New(view.Error)
	}
	if u := a.session.Snapshot().User; u != nil {
		fmt.Fprintf(a.out, "Welcome, %s\n", u.Name)
	}
	return nil
}

func (a *app) prompt(label string) string {
	fmt.Fprintf(a.out, "%s: ", label)
	line, _ := a.in.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

func (a *app) promptSecret(label string) (string, error) {
	if a.readSecret == nil {
		return a.prompt(label), nil
	}
	fmt.Fprintf(a.out, "%s: ", label)
	secret, err := a.readSecret()
	fmt.Fprintln(a.out)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return secret, nil
}

func (a *app) printTasks(tasks []domain.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "No tasks found")
		return
	}
	for _, t := range tasks {
		mark := " "
		if t.Status == domain.TaskStatusCompleted {
			mark = "x"
		}
		fmt.Fprintf(a.out, "[%s] %s  %s\n", mark, t.ID, t.Title)
	}
}

// findTask resolves a full id or a unique id prefix.
func findTask(tasks []domain.Task, args []string) (domain.Task, error) {
	if len(args) == 0 {
		return domain.Task{}, errors.New("a task id is required")
	}
	ref := strings.ToLower(args[0])
	if id, err := uuid.Parse(ref); err == nil {
		for _, t := range tasks {
			if t.ID == id {
				return t, nil
			}
		}
		return domain.Task{ID: id}, nil
	}

	var match *domain.Task
	for i := range tasks {
		if strings.HasPrefix(tasks[i].ID.String(), ref) {
			if match != nil {
				return domain.Task{}, fmt.Errorf("task id %q is ambiguous", ref)
			}
			match = &tasks[i]
		}
	}
	if match == nil {
		return domain.Task{}, fmt.Errorf("no task matches %q", ref)
	}
	return *match, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "taskctl: %v\n", err)
	os.Exit(1)
}
