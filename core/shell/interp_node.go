package shell

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/josephlewis42/vshell/core/vos"
)

// nodeExit is the interrupt value process.exit() stops the runtime with.
type nodeExit struct {
	code int
}

// NodeInterpreter runs a restricted JavaScript dialect. Scripts get console,
// process.argv, process.env and process.exit. There is no module loading and
// no access to the host.
var NodeInterpreter Interpreter = InterpreterFunc(runNode)

func runNode(script *Script, ctx *Context, io *vos.IOStreams) int {
	vm := goja.New()

	format := func(call goja.FunctionCall) string {
		var parts []string
		for _, arg := range call.Arguments {
			parts = append(parts, formatJSValue(arg))
		}
		return strings.Join(parts, " ") + "\n"
	}
	toStdout := func(call goja.FunctionCall) goja.Value {
		io.Stdout.WriteString(format(call))
		return goja.Undefined()
	}
	toStderr := func(call goja.FunctionCall) goja.Value {
		io.Stderr.WriteString(format(call))
		return goja.Undefined()
	}

	console := vm.NewObject()
	console.Set("log", toStdout)
	console.Set("info", toStdout)
	console.Set("error", toStderr)
	console.Set("warn", toStderr)
	vm.Set("console", console)

	argv := []interface{}{script.ID, script.Path}
	for _, arg := range script.Args {
		argv = append(argv, arg)
	}
	env := map[string]interface{}{}
	for _, kv := range ctx.Env.Environ() {
		key, value := vos.SplitEnv(kv)
		env[key] = value
	}

	process := vm.NewObject()
	process.Set("argv", argv)
	process.Set("env", env)
	process.Set("exit", func(call goja.FunctionCall) goja.Value {
		code := 0
		if len(call.Arguments) > 0 {
			code = int(call.Argument(0).ToInteger())
		}
		vm.Interrupt(&nodeExit{code: code})
		return goja.Undefined()
	})
	vm.Set("process", process)

	stop := make(chan struct{})
	defer close(stop)
	go watchCancel(vm, io.Cancel, stop)

	_, err := vm.RunScript(script.Path, blankShebang(script.Source))
	return nodeStatus(script.ID, err, io)
}

func nodeStatus(id string, err error, io *vos.IOStreams) int {
	if err == nil {
		return ExitSuccess
	}

	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		switch v := interrupted.Value().(type) {
		case *nodeExit:
			return v.code
		case cancelled:
			return ExitCancelled
		}
	}

	var exception *goja.Exception
	if errors.As(err, &exception) {
		scriptErr := &ScriptError{Interpreter: id, Kind: "Error", Message: exception.Error()}
		if obj, ok := exception.Value().(*goja.Object); ok {
			if name := obj.Get("name"); name != nil && !goja.IsUndefined(name) {
				scriptErr.Kind = name.String()
			}
			if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) {
				scriptErr.Message = msg.String()
			}
		} else if v := exception.Value(); v != nil {
			scriptErr.Message = v.String()
		}
		return Report(io.Stderr, id, trimSyntaxKind(scriptErr))
	}

	var syntaxErr *goja.CompilerSyntaxError
	if errors.As(err, &syntaxErr) {
		return Report(io.Stderr, id, trimSyntaxKind(&ScriptError{Interpreter: id, Kind: "SyntaxError", Message: syntaxErr.Error()}))
	}

	return Report(io.Stderr, id, &ScriptError{Interpreter: id, Kind: "Error", Message: err.Error()})
}

// trimSyntaxKind drops the "SyntaxError: " compile errors already carry in
// their message.
func trimSyntaxKind(err *ScriptError) *ScriptError {
	if err.Kind == "SyntaxError" {
		err.Message = strings.TrimPrefix(err.Message, "SyntaxError: ")
	}
	return err
}

type cancelled struct{}

const cancelPollInterval = 10 * time.Millisecond

// watchCancel interrupts the runtime once the token is cancelled.
func watchCancel(vm *goja.Runtime, token *vos.CancelToken, stop <-chan struct{}) {
	ticker := time.NewTicker(cancelPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if token.Cancelled() {
				vm.Interrupt(cancelled{})
				return
			}
		}
	}
}

// blankShebang replaces a leading #! line with an empty line so line numbers
// in errors still match the file.
func blankShebang(source string) string {
	if !strings.HasPrefix(source, "#!") {
		return source
	}
	if idx := strings.IndexByte(source, '\n'); idx >= 0 {
		return source[idx:]
	}
	return ""
}

func formatJSValue(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}

	if obj, ok := v.(*goja.Object); ok {
		switch obj.ClassName() {
		case "Function", "Error":
			return v.String()
		}
		if out, err := obj.MarshalJSON(); err == nil {
			return string(out)
		}
	}
	return fmt.Sprint(v.Export())
}
