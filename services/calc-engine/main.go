// Command calc-engine runs one valuation from the command line.
//
//	calc-engine -mode calculate -kind ddm -data '{model_type: "gordon", ...}'
//	calc-engine -mode sensitivity -kind epv -file inputs.hjson -format md
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"intrinsic_valuation/pkg/core/config"
	"intrinsic_valuation/pkg/core/report"
	"intrinsic_valuation/pkg/core/utils"
	"intrinsic_valuation/pkg/core/valuation"
	"intrinsic_valuation/pkg/models"
)

type options struct {
	mode   string
	kind   string
	data   string
	file   string
	format string
	config string
}

func main() {
	var opts options
	flag.StringVar(&opts.mode, "mode", "calculate", "Mode: validate, calculate or sensitivity")
	flag.StringVar(&opts.kind, "kind", "", "Model: dcf, ddm, epv or nav")
	flag.StringVar(&opts.data, "data", "", "Inputs as JSON or Hjson")
	flag.StringVar(&opts.file, "file", "", "Read inputs from a file instead of -data")
	flag.StringVar(&opts.format, "format", "json", "Output: json or md")
	flag.StringVar(&opts.config, "config", config.DefaultPath, "Path to the YAML settings file")
	flag.Parse()

	_ = godotenv.Load()

	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, out io.Writer) error {
	payload := opts.data
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", opts.file, err)
		}
		payload = string(data)
	}
	if payload == "" {
		return fmt.Errorf("no data provided")
	}

	req, err := parseRequest(opts.kind, payload)
	if err != nil {
		return err
	}

	switch opts.mode {
	case "validate":
		result, err := valuation.Validate(req)
		if err != nil {
			return err
		}
		if err := writeJSON(out, result); err != nil {
			return err
		}
		if !result.IsValid {
			return fmt.Errorf("inputs are invalid")
		}
		return nil

	case "calculate":
		resp, err := valuation.Run(req)
		if err != nil {
			return err
		}
		return emit(out, opts.format, report.Document{Response: resp})

	case "sensitivity":
		cfg, err := config.Load(opts.config)
		if err != nil {
			return err
		}
		resp, err := valuation.Run(req)
		if err != nil {
			return err
		}
		analyzer := valuation.NewAnalyzer(valuation.SensitivityOptions{
			GrowthOffsets:   cfg.Sensitivity.GrowthOffsets,
			DiscountOffsets: cfg.Sensitivity.DiscountOffsets,
			Workers:         cfg.Sensitivity.Workers,
		})
		sens, err := analyzer.RunSensitivity(req)
		if err != nil {
			return err
		}
		if opts.format == "json" {
			return writeJSON(out, sens)
		}
		return emit(out, opts.format, report.Document{Response: resp, Sensitivity: &sens})

	default:
		return fmt.Errorf("unknown mode: %s", opts.mode)
	}
}

// parseRequest decodes payload into the inputs for kind.
func parseRequest(kindName, payload string) (valuation.Request, error) {
	kind, err := valuation.ParseKind(kindName)
	if err != nil {
		return valuation.Request{}, err
	}

	req := valuation.Request{Kind: kind}
	var target interface{}
	switch kind {
	case valuation.KindDCF:
		req.DCF = &models.DCFInputs{}
		target = req.DCF
	case valuation.KindDDM:
		req.DDM = &models.DDMInputs{}
		target = req.DDM
	case valuation.KindEPV:
		req.EPV = &models.EPVInputs{}
		target = req.EPV
	case valuation.KindNAV:
		req.NAV = &models.NAVInputs{}
		target = req.NAV
	}

	if _, err := utils.SmartParse(payload, target); err != nil {
		return valuation.Request{}, err
	}
	return req, nil
}

func emit(out io.Writer, format string, doc report.Document) error {
	switch format {
	case "json":
		return writeJSON(out, doc.Response)
	case "md", "markdown":
		_, err := io.WriteString(out, report.Build(report.Header{}, doc))
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
