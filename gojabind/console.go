package gojabind

import (
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func (b *Bridge) initConsole() error {
	logger := b.logger.Named("console")
	stringify := func(v goja.Value) string {
		if o, ok := v.(*goja.Object); ok {
			if _, isFn := goja.AssertFunction(o); !isFn {
				data, err := o.MarshalJSON()
				if err == nil {
					return string(data)
				}
			}
		}
		return v.String()
	}
	logAt := func(level zapcore.Level) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = stringify(arg)
			}
			if ce := logger.Check(level, strings.Join(parts, " ")); ce != nil {
				ce.Write()
			}
			return goja.Undefined()
		}
	}

	console := b.vm.NewObject()
	for name, level := range map[string]zapcore.Level{
		"trace": zap.DebugLevel,
		"debug": zap.DebugLevel,
		"info":  zap.InfoLevel,
		"log":   zap.InfoLevel,
		"warn":  zap.WarnLevel,
		"error": zap.ErrorLevel,
	} {
		if err := console.Set(name, logAt(level)); err != nil {
			return err
		}
	}
	return b.vm.Set("console", console)
}
