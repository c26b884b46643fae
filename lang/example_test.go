package lang_test

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ardnew/sigil/lang"
	"github.com/ardnew/sigil/log"
)

func ExampleInterpreter_Run() {
	src := `# squares
§var[name; world]
Hello, $name!
§for[i; 1; 4]
§log[$i squared is §mul[$i; $i]]
§endfor`

	interp := lang.New(lang.WithOutput(os.Stdout), lang.WithLogger(log.Discard()))

	if _, err := interp.Run(context.Background(), src); err != nil {
		fmt.Println(err)
	}

	// Output:
	// Hello, world!
	// 1 squared is 1
	// 2 squared is 4
	// 3 squared is 9
}

func ExampleValidate() {
	err := lang.Validate("§if[true]\n§endwhile")

	var ve *lang.ValidationError
	if errors.As(err, &ve) {
		for _, d := range ve.Diagnostics {
			fmt.Println(d)
		}
	}

	// Output:
	// line 2: endwhile: mismatched terminator (open=if, opened=1)
}

func ExamplePlugin() {
	greet := lang.Plugin{
		Name:    "greet",
		Version: "1.0.0",
		Handlers: map[string]lang.Handler{
			"hello": lang.HandlerFunc(func(_ *lang.Context, a *lang.Args) (string, error) {
				return "hello, " + a.String(), nil
			}),
		},
	}

	interp := lang.New(
		lang.WithPlugins(greet),
		lang.WithOutput(os.Stdout),
		lang.WithLogger(log.Discard()),
	)

	_, _ = interp.Run(context.Background(), "§log[§hello[gopher]]")

	// Output:
	// hello, gopher
}
