// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

// Command adminctl is an operator tool for a running PMD backend. It can
// inspect and reset brute-force login blocks and page through the audit
// trail over the REST API.
//
// Usage:
//
//	adminctl [-addr host:port] [-token bearer] <command> [arguments]
//
// The commands are:
//
//	login <email> <password>   authenticate and print a bearer token
//	status <identifier>        show one identifier's failed-login record
//	list                       show every tracked identifier
//	reset <identifier>         clear one identifier's record
//	reset-all                  clear every tracked identifier
//	audit                      list audit records (see audit flags)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pmdworks/pmd-backend/internal/adapter"
	"github.com/pmdworks/pmd-backend/internal/logger"
	"github.com/pmdworks/pmd-backend/models"
)

const requestTimeout = 15 * time.Second

func main() {
	addr := flag.String("addr", "localhost:8080", "backend address, host:port")
	token := flag.String("token", os.Getenv("PMD_TOKEN"), "bearer token (default $PMD_TOKEN)")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log := logger.NewLogger("adminctl")
	operator, err := adapter.NewHTTPOperatorAdapter(*addr, requestTimeout, log)
	if err != nil {
		fatalf("adminctl: %v", err)
	}
	operator.SetToken(*token)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err = run(ctx, operator, flag.Arg(0), flag.Args()[1:]); err != nil {
		fatalf("adminctl: %v", err)
	}
}

func run(ctx context.Context, operator adapter.OperatorAdapter, command string, args []string) error {
	switch command {
	case "login":
		return runLogin(ctx, operator, args)
	case "status":
		return runStatus(ctx, operator, args)
	case "list":
		return runList(ctx, operator)
	case "reset":
		return runReset(ctx, operator, args)
	case "reset-all":
		return operatorResetAll(ctx, operator)
	case "audit":
		return runAudit(ctx, operator, args)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func runLogin(ctx context.Context, operator adapter.OperatorAdapter, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: adminctl login <email> <password>")
	}

	resp, err := operator.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Println(resp.AccessToken)
	return nil
}

func runStatus(ctx context.Context, operator adapter.OperatorAdapter, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: adminctl status <identifier>")
	}

	status, err := operator.BruteForceStatus(ctx, args[0])
	if err != nil {
		return err
	}

	printStatuses(status)
	return nil
}

func runList(ctx context.Context, operator adapter.OperatorAdapter) error {
	records, err := operator.BruteForceList(ctx)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("no tracked identifiers")
		return nil
	}

	printStatuses(records...)
	return nil
}

func runReset(ctx context.Context, operator adapter.OperatorAdapter, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: adminctl reset <identifier>")
	}

	if err := operator.BruteForceReset(ctx, args[0]); err != nil {
		return err
	}

	fmt.Printf("reset %s\n", args[0])
	return nil
}

func operatorResetAll(ctx context.Context, operator adapter.OperatorAdapter) error {
	if err := operator.BruteForceResetAll(ctx); err != nil {
		return err
	}

	fmt.Println("all records reset")
	return nil
}

func runAudit(ctx context.Context, operator adapter.OperatorAdapter, args []string) error {
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)
	module := fs.String("module", "", "filter by module")
	action := fs.String("action", "", "filter by action")
	ip := fs.String("ip", "", "filter by client IP")
	userID := fs.Int64("user", 0, "filter by user id")
	page := fs.Int("page", 0, "page number")
	limit := fs.Int("limit", 0, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	listing, err := operator.AuditLogs(ctx, adapter.AuditQuery{
		Module:    *module,
		Action:    *action,
		IPAddress: *ip,
		UserID:    *userID,
		Page:      *page,
		Limit:     *limit,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tUSER\tMODULE\tACTION\tENTITY\tCRITICALITY\tIP")
	for _, item := range listing.Items {
		user := "-"
		if item.UserID != nil {
			user = fmt.Sprintf("%d", *item.UserID)
		}
		entity := item.EntityType
		if item.EntityID != "" {
			entity = fmt.Sprintf("%s/%s", item.EntityType, item.EntityID)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			item.CreatedAt.Format(time.RFC3339), user, item.Module, item.Action,
			entity, item.Criticality, item.IPAddress)
	}
	if err = w.Flush(); err != nil {
		return err
	}

	fmt.Printf("page %d of %d records (limit %d)\n", listing.Page, listing.Total, listing.Limit)
	return nil
}

func printStatuses(records ...models.BruteForceStatus) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "IDENTIFIER\tATTEMPTS\tREMAINING\tBLOCKED\tBLOCKED UNTIL\tLAST ATTEMPT")
	for _, s := range records {
		blockedUntil := "-"
		if s.BlockedUntil != nil {
			blockedUntil = s.BlockedUntil.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%t\t%s\t%s\n",
			s.Identifier, s.Attempts, s.RemainingAttempts, s.Blocked,
			blockedUntil, s.LastAttempt.Format(time.RFC3339))
	}
	_ = w.Flush()
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
