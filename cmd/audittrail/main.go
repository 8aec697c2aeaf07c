// Command audittrail summarizes the NDJSON security audit log: totals per
// action, PII redaction counts, and the most recent entries.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"github.com/valyala/fastjson"

	"github.com/lexiqlabs/lexshield/pkg/common"
	"github.com/lexiqlabs/lexshield/pkg/config"
	"github.com/lexiqlabs/lexshield/pkg/version"
)

type entry struct {
	timestamp string
	requestID string
	userID    string
	action    string
	passed    bool
	riskScore float64
	redacted  int
}

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	if err := config.Load("."); err != nil {
		log.Printf("config load failed, using defaults: %v", err)
	}

	logFile := flag.String("file", defaultLogFile(), "path to the audit log")
	recent := flag.Int("n", 10, "number of recent entries to show")
	summaryOnly := flag.Bool("summary", false, "print only the per-action summary")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetInfo())
		return
	}

	entries, err := readEntries(*logFile)
	if err != nil {
		log.Fatalf("failed to read audit log: %v", err)
	}
	if len(entries) == 0 {
		fmt.Println("audit log is empty")
		return
	}

	printSummary(entries)
	if !*summaryOnly {
		printRecent(entries, *recent)
	}
}

func defaultLogFile() string {
	if v := os.Getenv("AUDIT_LOG_FILE"); v != "" {
		return v
	}
	if v := config.GetConfig().Audit.LogFile; v != "" {
		return v
	}
	return common.DefaultAuditLogFile
}

func readEntries(path string) ([]entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []entry
	var p fastjson.Parser
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		v, err := p.ParseBytes(line)
		if err != nil {
			// Skip malformed lines rather than aborting the whole report.
			continue
		}
		entries = append(entries, entry{
			timestamp: string(v.GetStringBytes("timestamp")),
			requestID: string(v.GetStringBytes("request_id")),
			userID:    string(v.GetStringBytes("user_id")),
			action:    string(v.GetStringBytes("action")),
			passed:    v.GetBool("validation_passed"),
			riskScore: v.GetFloat64("risk_score"),
			redacted:  v.GetInt("num_redactions"),
		})
	}
	return entries, scanner.Err()
}

func printSummary(entries []entry) {
	actions := map[string]int{}
	failed := 0
	totalRedactions := 0
	for _, e := range entries {
		actions[e.action]++
		if !e.passed {
			failed++
		}
		totalRedactions += e.redacted
	}

	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("total entries: %d\n", len(entries))
	fmt.Printf("failed validations: %d\n", failed)
	fmt.Printf("total redactions: %d\n", totalRedactions)
	fmt.Println("actions:")
	for _, name := range names {
		fmt.Printf("  %-28s %d\n", name, actions[name])
	}
}

func printRecent(entries []entry, n int) {
	if n > len(entries) {
		n = len(entries)
	}
	fmt.Printf("\nmost recent %d entries:\n", n)
	for _, e := range entries[len(entries)-n:] {
		status := "OK"
		if !e.passed {
			status = "REJECTED"
		}
		fmt.Printf("  %s  %s  %s  user=%s  risk=%.2f  redactions=%d  %s\n",
			e.timestamp, e.requestID, e.action, e.userID, e.riskScore, e.redacted, status)
	}
}
