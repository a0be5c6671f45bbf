package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/theadruss/Clix-App/core"
)

// RollbarLogger writes every entry to a std logger and reports it to Rollbar.
// Rollbar reporting is off in debug mode and when no token is configured.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	l := &RollbarLogger{std: std}
	l.Enable(!conf.Debug && conf.RollbarToken != "")
	return l
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Close waits for the queued Rollbar reports to be sent.
func (l RollbarLogger) Close() {
	rollbar.Close()
}

// split separates the person the entry relates to from the other args.
// expected args: error, map[string]interface{}, core.Person
func split(args []interface{}) (person *core.Person, rest []interface{}) {
	rest = make([]interface{}, 0, len(args))
	for _, arg := range args {
		if p, ok := arg.(core.Person); ok {
			if person == nil { // only keep one person
				p := p
				person = &p
			}
			continue
		}
		rest = append(rest, arg)
	}
	return person, rest
}

func (l RollbarLogger) report(level, msg string, args []interface{}) {
	person, rest := split(args)
	if person != nil {
		rollbar.SetPerson(person.ID, person.Name, person.Email)
	} else {
		rollbar.ClearPerson()
	}
	rollbar.Log(level, append([]interface{}{msg}, rest...)...)

	l.std.Println(msg)
	if person != nil {
		l.std.Printf("user: %s <%s>\n", person.ID, person.Email)
	}
	for _, arg := range rest {
		l.std.Printf("%+v\n", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) { l.report(rollbar.DEBUG, msg, args) }
func (l RollbarLogger) Info(msg string, args ...interface{})  { l.report(rollbar.INFO, msg, args) }
func (l RollbarLogger) Warn(msg string, args ...interface{})  { l.report(rollbar.WARN, msg, args) }
func (l RollbarLogger) Error(msg string, args ...interface{}) { l.report(rollbar.ERR, msg, args) }

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.report(rollbar.CRIT, msg, args)
	rollbar.Close()
	l.std.Fatal(msg)
}
