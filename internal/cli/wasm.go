package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/specialistvlad/exprbridge/internal/wasmhost"
	"github.com/specialistvlad/exprbridge/internal/wire"
)

func newWasmCommand(flags *globalFlags) *cobra.Command {
	var (
		modulePath  string
		requestPath string
		inputs      []string
	)

	cmd := &cobra.Command{
		Use:   "wasm [EXPRESSION]",
		Short: "Run a request through the WASI build under wazero",
		Long: `Load the exprbridge WASI module and run one wire request through it.

With EXPRESSION, the request is built from --input bindings and evaluates a
single row. Without it, a JSON request is read from --request, or from
stdin when --request is "-" or empty. The JSON response is printed.

Build the module with:
  GOOS=wasip1 GOARCH=wasm go build -o exprbridge.wasm ./cmd/wasi`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := flags.load(cmd)
			if err != nil {
				return err
			}

			var req wire.Request
			if len(args) == 1 {
				names, values, err := splitInputs(inputs)
				if err != nil {
					return err
				}
				req = wire.Request{Expression: args[0], Inputs: names, Rows: [][]string{values}}
			} else {
				var rd io.Reader = cmd.InOrStdin()
				if requestPath != "" && requestPath != "-" {
					f, err := os.Open(requestPath)
					if err != nil {
						return usageError("failed to open request: %v", err)
					}
					defer f.Close()
					rd = f
				}
				if req, err = wire.DecodeRequest(rd); err != nil {
					return usageError("%v", err)
				}
			}

			host, err := wasmhost.Load(ctx, modulePath)
			if err != nil {
				return err
			}
			defer host.Close(ctx)

			resp, err := host.Run(ctx, req)
			if err != nil {
				return err
			}
			return wire.Encode(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVarP(&modulePath, "module", "m", "exprbridge.wasm", "path to the WASI module")
	cmd.Flags().StringVar(&requestPath, "request", "", `JSON request file, "-" for stdin`)
	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "input binding NAME=VALUE, repeatable, in order")
	return cmd
}
