package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		if verr, ok := errorsAsValidation(err); ok {
			fmt.Fprintf(os.Stderr, "Error: %s (%s)\n", verr.Message, verr.Code)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
