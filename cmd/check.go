package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/porthorian/fedcheck"
)

type checkConfig struct {
	Mode string
}

func init() {
	rootCmd.AddCommand(newCheckCommand())
}

func newCheckCommand() *cobra.Command {
	cfg := checkConfig{
		Mode: string(fedcheck.ModeValidateSAMLConfig),
	}

	checkCmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a federation config file and print the response envelope",
		Long:  "Reads a JSON payload from a file (or stdin when the argument is - or omitted), runs it through the requested mode, and prints the response envelope. Exits non-zero when the envelope carries the error branch.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, cfg, args)
		},
		SilenceUsage: true,
	}

	checkCmd.Flags().StringVar(&cfg.Mode, "mode", cfg.Mode, "Dispatch mode. Supported: validate_envelope_contract, validate_saml_config, audit_saml_config.")

	return checkCmd
}

func runCheck(cmd *cobra.Command, cfg checkConfig, args []string) error {
	data, err := readPayload(cmd, args)
	if err != nil {
		return err
	}

	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}

	client, err := fedcheck.New(fedcheck.Config{Logger: logr.Discard()})
	if err != nil {
		return err
	}

	env := client.Dispatch(cmd.Context(), fedcheck.Request{
		Mode:    fedcheck.Mode(cfg.Mode),
		Payload: payload,
	})

	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))

	if env.IsError() {
		return fmt.Errorf("payload rejected in mode %s", cfg.Mode)
	}
	return nil
}

func readPayload(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read payload file: %w", err)
	}
	return data, nil
}
