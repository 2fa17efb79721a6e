// Package main provides the phiflow CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	_ "github.com/ajrox090/PhiFlow/backend/cpu"
	"github.com/ajrox090/PhiFlow/tensor"
	"k8s.io/klog/v2"
)

const version = "v0.1.0-dev"

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("phiflow", flag.ContinueOnError)
	klog.InitFlags(fs)
	precision := fs.Int("precision", 32, "float precision in bits used by factories (16, 32 or 64)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	defer tensor.Configure(tensor.Config{Precision: *precision})()

	log := klog.FromContext(ctx)
	switch cmd := fs.Arg(0); cmd {
	case "version":
		fmt.Fprintf(out, "phiflow %s\n", version)
	case "backends":
		for i, b := range tensor.Registered() {
			fmt.Fprintf(out, "%d\t%s\n", i, b.Name())
		}
	case "selfcheck":
		log.V(2).Info("running self-check", "precision", *precision)
		failed := 0
		for _, c := range checks {
			err := c.run()
			status := "ok"
			if err != nil {
				status = "FAIL: " + err.Error()
				failed++
			}
			fmt.Fprintf(out, "%-28s %s\n", c.name, status)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d checks failed", failed, len(checks))
		}
	case "":
		fmt.Fprintf(out, "phiflow %s\n\n", version)
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  version    Show version")
		fmt.Fprintln(out, "  backends   List registered backends in preference order")
		fmt.Fprintln(out, "  selfcheck  Run numeric self-checks on the default backend")
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}
