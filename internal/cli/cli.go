// Package cli is the command-line front end. Every command declares who may
// run it and the dispatcher resolves the session through a guard gate first.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"hireflow/internal/app"
	"hireflow/internal/common"
	"hireflow/internal/domain/application"
	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/job"
	"hireflow/internal/flow"
	"hireflow/internal/guard"
)

const (
	ExitOK       = 0
	ExitError    = 1
	ExitRedirect = 2
)

// Backend is the job-board API as the commands consume it.
type Backend interface {
	app.AuthAPI
	app.JobAPI
	app.ReviewAPI
	app.MyApplicationsAPI
	app.ProfileAPI
	flow.ResetAPI
	flow.SubmitAPI
	application.Analyzer
	GetJob(ctx context.Context, id int64) (job.Job, error)
}

// Sessions is the session service seen from the CLI.
type Sessions interface {
	guard.Source
	app.Sessions
	flow.TemporaryTokens
	flow.Identity
}

type Dependencies struct {
	Backend  Backend
	Sessions Sessions
	Serve    func(ctx context.Context) error
	In       io.Reader
	Out      io.Writer
	Err      io.Writer
	Logger   *slog.Logger
	Now      func() time.Time
}

type App struct {
	backend  Backend
	sessions Sessions
	auth     *app.AuthService
	serve    func(ctx context.Context) error
	in       *bufio.Scanner
	out      io.Writer
	errOut   io.Writer
	logger   *slog.Logger
	now      func() time.Time
	commands map[string]*command
	serving  atomic.Bool
}

// access says who may run a command.
type access int

const (
	public access = iota
	signedIn
	recruiterOnly
	studentOnly
)

type command struct {
	name   string
	usage  string
	access access
	run    func(ctx context.Context, args []string) error
	subs   map[string]*command
}

func New(deps Dependencies) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.In == nil {
		deps.In = strings.NewReader("")
	}
	a := &App{
		backend:  deps.Backend,
		sessions: deps.Sessions,
		auth:     app.NewAuthService(deps.Backend, deps.Sessions, deps.Logger),
		serve:    deps.Serve,
		in:       bufio.NewScanner(deps.In),
		out:      deps.Out,
		errOut:   deps.Err,
		logger:   deps.Logger,
		now:      deps.Now,
	}
	a.commands = a.register()
	return a
}

func (a *App) register() map[string]*command {
	list := []*command{
		{name: "login", usage: "login --email EMAIL [--password PASSWORD] [--role student|recruiter]", access: public, run: a.login},
		{name: "signup", usage: "signup --name NAME --email EMAIL --password PW --confirm-password PW --role ROLE [--agree-terms]", access: public, run: a.signup},
		{name: "logout", usage: "logout", access: public, run: a.logout},
		{name: "forgot-password", usage: "forgot-password [--email EMAIL]", access: public, run: a.forgotPassword},
		{name: "serve", usage: "serve", access: public, run: a.runServe},
		{name: "whoami", usage: "whoami", access: signedIn, run: a.whoami},
		{name: "dashboard", usage: "dashboard", access: signedIn, run: a.dashboard},
		{name: "jobs", usage: "jobs list|show|create|update|delete|status", subs: map[string]*command{
			"list":   {name: "jobs list", usage: "jobs list [--status STATUS] [--q TERM]", access: signedIn, run: a.jobsList},
			"show":   {name: "jobs show", usage: "jobs show ID", access: signedIn, run: a.jobsShow},
			"create": {name: "jobs create", usage: "jobs create --title T --description D [fields]", access: recruiterOnly, run: a.jobsCreate},
			"update": {name: "jobs update", usage: "jobs update ID [fields]", access: recruiterOnly, run: a.jobsUpdate},
			"delete": {name: "jobs delete", usage: "jobs delete ID", access: recruiterOnly, run: a.jobsDelete},
			"status": {name: "jobs status", usage: "jobs status ID active|draft|closed", access: recruiterOnly, run: a.jobsStatus},
		}},
		{name: "applications", usage: "applications list|status|analyze|export", subs: map[string]*command{
			"list":    {name: "applications list", usage: "applications list JOB_ID [--status STATUS]", access: recruiterOnly, run: a.applicationsList},
			"status":  {name: "applications status", usage: "applications status JOB_ID APPLICATION_ID STATUS", access: recruiterOnly, run: a.applicationsStatus},
			"analyze": {name: "applications analyze", usage: "applications analyze JOB_ID APPLICATION_ID", access: recruiterOnly, run: a.applicationsAnalyze},
			"export":  {name: "applications export", usage: "applications export JOB_ID [--out PATH]", access: recruiterOnly, run: a.applicationsExport},
		}},
		{name: "apply", usage: "apply JOB_ID --resume PATH", access: studentOnly, run: a.apply},
		{name: "my-applications", usage: "my-applications", access: studentOnly, run: a.myApplications},
		{name: "profile", usage: "profile show|update", subs: map[string]*command{
			"show":   {name: "profile show", usage: "profile show", access: signedIn, run: a.profileShow},
			"update": {name: "profile update", usage: "profile update [--name N] [--phone P] [--location L] [--company C] [--position P] [--bio B] [--skills a,b] [--education E]", access: signedIn, run: a.profileUpdate},
		}},
		{name: "resume", usage: "resume show|upload", subs: map[string]*command{
			"show":   {name: "resume show", usage: "resume show", access: studentOnly, run: a.resumeShow},
			"upload": {name: "resume upload", usage: "resume upload PATH", access: studentOnly, run: a.resumeUpload},
		}},
	}
	commands := make(map[string]*command, len(list))
	for _, cmd := range list {
		commands[cmd.name] = cmd
	}
	return commands
}

// Run executes one command line and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.usage()
		return ExitOK
	}
	cmd, ok := a.commands[args[0]]
	if !ok {
		fmt.Fprintf(a.errOut, "unknown command %q\n", args[0])
		a.usage()
		return ExitError
	}
	args = args[1:]
	if cmd.subs != nil {
		if len(args) == 0 {
			fmt.Fprintf(a.errOut, "usage: hireflow %s\n", cmd.usage)
			return ExitError
		}
		sub, ok := cmd.subs[args[0]]
		if !ok {
			fmt.Fprintf(a.errOut, "unknown %s command %q\nusage: hireflow %s\n", cmd.name, args[0], cmd.usage)
			return ExitError
		}
		cmd, args = sub, args[1:]
	}

	if cmd.access != public {
		decision, err := guard.NewGate(a.sessions, cmd.access.roles()...).Wait(ctx)
		if err != nil {
			a.printError(err)
			return ExitError
		}
		if decision.Phase != guard.Authorized {
			return a.redirect(ctx, decision)
		}
	}

	if err := cmd.run(ctx, args); err != nil {
		var usage usageError
		if errors.As(err, &usage) {
			fmt.Fprintf(a.errOut, "%s\nusage: hireflow %s\n", usage.message, cmd.usage)
			return ExitError
		}
		a.printError(err)
		return ExitError
	}
	return ExitOK
}

func (c access) roles() []auth.Role {
	switch c {
	case recruiterOnly:
		return []auth.Role{auth.RoleRecruiter}
	case studentOnly:
		return []auth.Role{auth.RoleStudent}
	default:
		return nil
	}
}

// redirect follows an unauthorized decision. Without a session the user is
// sent to login; a signed-in user with the wrong role gets their own home.
func (a *App) redirect(ctx context.Context, decision guard.Decision) int {
	fmt.Fprintf(a.errOut, "redirect: %s\n", decision.Redirect)
	if decision.Redirect == auth.LoginPath {
		fmt.Fprintln(a.errOut, "You are not logged in. Run: hireflow login")
		return ExitRedirect
	}
	if err := a.showHome(ctx, decision.Session.Role); err != nil {
		a.printError(err)
		return ExitError
	}
	return ExitOK
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "usage: hireflow <command> [arguments]")
	fmt.Fprintln(a.out)
	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(a.out, "  %s\n", a.commands[name].usage)
	}
}

func (a *App) printError(err error) {
	message := common.MessageOr(err, "Something went wrong. Please try again.")
	var view *viewError
	if errors.As(err, &view) {
		message = view.message
	}
	fmt.Fprintf(a.errOut, "error: %s\n", message)
	var coded *common.Error
	if errors.As(err, &coded) && len(coded.Fields) > 0 {
		keys := make([]string, 0, len(coded.Fields))
		for key := range coded.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(a.errOut, "  %s: %s\n", key, coded.Fields[key])
		}
	}
}

type usageError struct{ message string }

func (e usageError) Error() string { return e.message }

func usagef(format string, args ...any) error {
	return usageError{message: fmt.Sprintf(format, args...)}
}

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// parse accepts flags before, between and after positional arguments.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, usagef("%v", err)
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// prompt reads one line, printing label first. ok is false at end of input.
func (a *App) prompt(label string) (string, bool) {
	fmt.Fprint(a.out, label)
	if !a.in.Scan() {
		fmt.Fprintln(a.out)
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

// Navigate follows a route change made by the session service, such as the
// role home after login. While the console is serving, each HTTP response
// carries its own redirect and nothing is printed.
func (a *App) Navigate(path string) {
	if a.serving.Load() {
		return
	}
	fmt.Fprintf(a.out, "redirect: %s\n", path)
}

func (a *App) runServe(ctx context.Context, args []string) error {
	if a.serve == nil {
		return common.NewError(common.CodeInternal, "the console server is not available in this build", nil)
	}
	a.serving.Store(true)
	defer a.serving.Store(false)
	return a.serve(ctx)
}
