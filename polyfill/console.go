package polyfill

import (
	"strings"

	"github.com/buke/quickjs-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func (e *Env) logJsValues(level zapcore.Level) func(ctx *quickjs.Context, this quickjs.Value, args []quickjs.Value) quickjs.Value {
	logger := e.logger.Named("console")
	return func(ctx *quickjs.Context, this quickjs.Value, args []quickjs.Value) quickjs.Value {
		parts := make([]string, 0, len(args))
		for _, arg := range args {
			if arg.IsObject() && !arg.IsFunction() {
				parts = append(parts, arg.JSONStringify())
			} else {
				parts = append(parts, arg.String())
			}
		}
		if ce := logger.Check(level, strings.Join(parts, " ")); ce != nil {
			ce.Write()
		}
		return ctx.Undefined()
	}
}

func (e *Env) injectConsole() {
	consoleObj := e.ctx.Object()
	consoleObj.Set("trace", e.ctx.Function(e.logJsValues(zapcore.DebugLevel)))
	consoleObj.Set("debug", e.ctx.Function(e.logJsValues(zapcore.DebugLevel)))
	consoleObj.Set("info", e.ctx.Function(e.logJsValues(zapcore.InfoLevel)))
	consoleObj.Set("log", e.ctx.Function(e.logJsValues(zapcore.InfoLevel)))
	consoleObj.Set("warn", e.ctx.Function(e.logJsValues(zapcore.WarnLevel)))
	consoleObj.Set("error", e.ctx.Function(e.logJsValues(zapcore.ErrorLevel)))

	e.ctx.Globals().Set("console", consoleObj)
}

func (e *Env) injectPrint() {
	e.ctx.Globals().Set("print", e.ctx.Function(e.logJsValues(zap.InfoLevel)))
}
