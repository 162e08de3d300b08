// Command tokengen issues and inspects bearer tokens for the tenantry API.
// Tokens are signed with JWT_SIGNING_KEY (or the development default), so
// they are only accepted by a server sharing that key.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"

	"tenantry/internal/platform/config"
	"tenantry/internal/token"
	id "tenantry/pkg/domain"
	"tenantry/pkg/session"
)

const (
	tokenIssuer   = "tenantry"
	tokenAudience = "tenantry-api"
)

const usage = `tokengen issues bearer tokens for the tenantry API.

Usage:
  tokengen access  [-user-id UUID] [-tenant-id UUID] [-class agent|contact]
                   [-capabilities a,b] [-ttl 15m] [-json]
  tokengen inspect [-json] TOKEN

Missing IDs are generated. Examples:
  tokengen access -capabilities manage_tenant
  tokengen access -class contact -ttl 1h
  tokengen inspect eyJhbGciOi...
`

var errUsage = errors.New("usage")

func main() {
	err := run(os.Args[1:], config.Load(), os.Stdout)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "tokengen:", err)
		os.Exit(1)
	}
}

func run(args []string, cfg config.Server, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch cmd, rest := args[0], args[1:]; cmd {
	case "access":
		return access(rest, cfg, out)
	case "inspect":
		return inspect(rest, cfg, out)
	case "help", "-h", "--help":
		_, err := fmt.Fprint(out, usage)
		return err
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func access(args []string, cfg config.Server, out io.Writer) error {
	fs := flag.NewFlagSet("access", flag.ContinueOnError)
	userID := fs.String("user-id", "", "user UUID; generated when empty")
	tenantID := fs.String("tenant-id", "", "tenant UUID; generated when empty")
	class := fs.String("class", session.AccountClassAgent, "account class: agent or contact")
	caps := fs.String("capabilities", "", "comma-separated capabilities, e.g. manage_tenant")
	ttl := fs.Duration("ttl", cfg.TokenTTL, "token lifetime")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	caller, err := buildCaller(*userID, *tenantID, *class, *caps)
	if err != nil {
		return err
	}
	bearer, err := token.NewService(cfg.JWTSigningKey, tokenIssuer, tokenAudience, *ttl).
		Issue(context.Background(), *caller)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	if *asJSON {
		return writeJSON(out, issued{Token: bearer, ExpiresIn: ttl.String(), Caller: describe(caller)})
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	writeCaller(tw, caller)
	fmt.Fprintf(tw, "expires in\t%s\n", *ttl)
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "\n%s\n\ncurl -H \"Authorization: Bearer $TOKEN\" http://localhost:8080/users\n", bearer)
	return err
}

func inspect(args []string, cfg config.Server, out io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("inspect takes one token: %w", errUsage)
	}

	caller, err := token.NewService(cfg.JWTSigningKey, tokenIssuer, tokenAudience, 0).ValidateToken(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}
	if *asJSON {
		return writeJSON(out, describe(caller))
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	writeCaller(tw, caller)
	return tw.Flush()
}

func buildCaller(userID, tenantID, class, caps string) (*session.Caller, error) {
	if class != session.AccountClassAgent && class != session.AccountClassContact {
		return nil, fmt.Errorf("class %q: want agent or contact", class)
	}
	uid, err := idOrNew(userID, id.ParseUserID)
	if err != nil {
		return nil, err
	}
	tid, err := idOrNew(tenantID, id.ParseTenantID)
	if err != nil {
		return nil, err
	}

	caller := &session.Caller{UserID: uid, TenantID: tid, AccountClass: class}
	for c := range strings.SplitSeq(caps, ",") {
		if c = strings.TrimSpace(c); c != "" {
			caller.Capabilities = append(caller.Capabilities, session.Capability(c))
		}
	}
	return caller, nil
}

// idOrNew parses raw, or mints a random identifier when raw is empty.
func idOrNew[T id.ID](raw string, parse func(string) (T, error)) (T, error) {
	if raw == "" {
		return T(uuid.New()), nil
	}
	return parse(raw)
}

type callerView struct {
	UserID       string               `json:"user_id"`
	TenantID     string               `json:"tenant_id"`
	AccountClass string               `json:"account_class"`
	Capabilities []session.Capability `json:"capabilities"`
}

type issued struct {
	Token     string     `json:"token"`
	ExpiresIn string     `json:"expires_in"`
	Caller    callerView `json:"caller"`
}

func describe(c *session.Caller) callerView {
	caps := c.Capabilities
	if caps == nil {
		caps = []session.Capability{}
	}
	return callerView{
		UserID:       c.UserID.String(),
		TenantID:     c.TenantID.String(),
		AccountClass: c.AccountClass,
		Capabilities: caps,
	}
}

func writeCaller(w io.Writer, c *session.Caller) {
	v := describe(c)
	fmt.Fprintf(w, "user\t%s\n", v.UserID)
	fmt.Fprintf(w, "tenant\t%s\n", v.TenantID)
	fmt.Fprintf(w, "class\t%s\n", v.AccountClass)
	fmt.Fprintf(w, "capabilities\t%v\n", v.Capabilities)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
