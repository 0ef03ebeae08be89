// The grader command loads a YAML grading suite, runs every test case
// against the student scripts it names, and reports the verdicts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/school-grader/school-grader/internal/app/runner"
	"github.com/school-grader/school-grader/internal/domain/grading"
	"github.com/school-grader/school-grader/internal/infra/htmlreport"
	"github.com/school-grader/school-grader/internal/infra/jsonreport"
	kafkainfra "github.com/school-grader/school-grader/internal/infra/kafka"
	"github.com/school-grader/school-grader/internal/infra/suite"
	"github.com/school-grader/school-grader/internal/ports"
	runtimex "github.com/school-grader/school-grader/internal/runtime"
	dockerruntime "github.com/school-grader/school-grader/internal/runtime/docker"
	"github.com/school-grader/school-grader/internal/runtime/local"
)

func main() {
	suitePath := flag.String("suite", "suite.yaml", "path of the YAML grading suite")
	reportPath := flag.String("report", "results.html", "path of the generated HTML report")
	jsonOut := flag.Bool("json", false, "print a JSON report to stdout instead of writing HTML")
	noOpen := flag.Bool("no-open", false, "do not open the HTML report in a browser")
	runtimeName := flag.String("runtime", "local", `execution runtime: "local" or "docker"`)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := suite.Load(*suitePath)
	if err != nil {
		log.Fatalf("load suite: %v", err)
	}

	engine, err := buildEngine(*runtimeName)
	if err != nil {
		log.Fatalf("initialize %s runtime: %v", *runtimeName, err)
	}

	sinks := buildSinks(*jsonOut, *reportPath, *noOpen)

	service := runner.NewService(engine, sinks...)
	results, err := service.Run(ctx, registry)
	if err != nil {
		log.Printf("warning: %v", err)
	}

	if !*jsonOut {
		printSummary(results)
	}

	closeAll(engine, sinks)
	if countFailed(results) > 0 {
		os.Exit(1)
	}
}

func buildEngine(name string) (runtimex.Engine, error) {
	switch name {
	case "local":
		return local.New(localConfigFromEnv())
	case "docker":
		return dockerruntime.New(dockerConfigFromEnv())
	default:
		return nil, fmt.Errorf("unknown runtime %q", name)
	}
}

func buildSinks(jsonOut bool, reportPath string, noOpen bool) []ports.ReportSink {
	var sinks []ports.ReportSink
	if jsonOut {
		sinks = append(sinks, jsonreport.New(os.Stdout))
	} else {
		sinks = append(sinks, htmlreport.New(htmlreport.Config{
			Path:        reportPath,
			OpenBrowser: !noOpen,
		}))
	}

	if cfg := kafkaConfigFromEnv(); cfg != nil {
		publisher, err := kafkainfra.NewPublisher(*cfg)
		if err != nil {
			log.Printf("warning: kafka sink disabled: %v", err)
		} else {
			sinks = append(sinks, publisher)
		}
	}
	return sinks
}

func printSummary(results []grading.TestResult) {
	for _, result := range results {
		switch result.Outcome {
		case grading.OutcomePassed:
			fmt.Printf("PASS  %s (%s)\n", result.Case.Name, result.Duration.Round(time.Millisecond))
		case grading.OutcomeFailed:
			fmt.Printf("FAIL  %s: %s\n", result.Case.Name, result.FailMessage)
		default:
			fmt.Printf("ERROR %s: %s\n", result.Case.Name, result.ErrorText)
		}
	}
	fmt.Printf("%d/%d tests passed\n", len(results)-countFailed(results), len(results))
}

func countFailed(results []grading.TestResult) int {
	failed := 0
	for _, result := range results {
		if !result.Passed() {
			failed++
		}
	}
	return failed
}

func closeAll(engine runtimex.Engine, sinks []ports.ReportSink) {
	if err := engine.Close(); err != nil {
		log.Printf("warning: close runtime: %v", err)
	}
	for _, sink := range sinks {
		if err := sink.Close(); err != nil {
			log.Printf("warning: close report sink: %v", err)
		}
	}
}
