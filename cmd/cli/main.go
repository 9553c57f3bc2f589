// Command fittrack is a CLI client for the fitness assistant's gRPC API.
package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	grpcinsecure "google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/and161185/fittrack/internal/model"
	grpcserver "github.com/and161185/fittrack/internal/server/grpc"
)

// ---- config store ----

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "fittrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fittrack")
}

func userIDPath() string { return filepath.Join(cfgDir(), "user_id") }

func saveUserID(id int64) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	return os.WriteFile(userIDPath(), []byte(strconv.FormatInt(id, 10)), 0o600)
}

func loadUserID() (int64, error) {
	b, err := os.ReadFile(userIDPath())
	if err != nil {
		return 0, errors.New("no user id (run login first)")
	}
	return parseUserID(strings.TrimSpace(string(b)))
}

func parseUserID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad user id %q", s)
	}
	return id, nil
}

// ---- grpc dial ----

type userCreds struct {
	id     int64
	secure bool
}

func (c userCreds) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{grpcserver.UserIDHeader: strconv.FormatInt(c.id, 10)}, nil
}
func (c userCreds) RequireTransportSecurity() bool { return c.secure }

func loadTLS(caPath string, insecure bool) (credentials.TransportCredentials, error) {
	if insecure {
		return credentials.NewTLS(&tls.Config{InsecureSkipVerify: true}), nil
	}
	if caPath == "" {
		return credentials.NewClientTLSFromCert(nil, ""), nil
	}
	pem, err := os.ReadFile(caPath)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return credentials.NewTLS(&tls.Config{RootCAs: pool}), nil
}

type dialOpts struct {
	addr      string
	caPath    string
	insecure  bool
	plaintext bool
}

func dial(ctx context.Context, o dialOpts, userID int64) (*grpc.ClientConn, *grpcserver.AssistantClient, error) {
	var creds credentials.TransportCredentials
	if o.plaintext {
		creds = grpcinsecure.NewCredentials()
	} else {
		c, err := loadTLS(o.caPath, o.insecure)
		if err != nil {
			return nil, nil, err
		}
		creds = c
	}
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithPerRPCCredentials(userCreds{id: userID, secure: !o.plaintext}),
	}
	//nolint:staticcheck // DialContext is supported through 1.x; migrate when grpc.NewClient is stable
	cc, err := grpc.DialContext(ctx, o.addr, opts...)
	if err != nil {
		return nil, nil, err
	}
	return cc, grpcserver.NewAssistantClient(cc), nil
}

// ---- utils ----

func usage() {
	fmt.Fprintf(os.Stderr, `fittrack CLI
Usage:
  fittrack -addr HOST:PORT [-cacert file | -insecure | -plaintext] <cmd> [args]

Commands:
  version
  login   -user <id>          (saves the user id)
  send    <text...>           e.g. send /log_water 250
  choose  <data>              answer a choice prompt
  chat                        interactive session
`)
	os.Exit(2)
}

func fail(err error) {
	if st, ok := status.FromError(err); ok {
		fmt.Fprintf(os.Stderr, "error: %s: %s\n", st.Code(), st.Message())
	} else {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(1)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

const rpcTimeout = 30 * time.Second

func main() {
	// global flags
	addr := flag.String("addr", "localhost:8443", "server addr")
	caPath := flag.String("cacert", "", "CA cert (PEM)")
	insecure := flag.Bool("insecure", false, "skip cert verify (dev)")
	plaintext := flag.Bool("plaintext", false, "no TLS (local dev)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	o := dialOpts{addr: *addr, caPath: *caPath, insecure: *insecure, plaintext: *plaintext}

	switch cmd {

	case "version":
		fmt.Printf("fittrack %s (%s)\n", version, buildDate)

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		user := fs.String("user", "", "user id")
		_ = fs.Parse(flag.Args()[1:])
		id, err := parseUserID(*user)
		if err != nil {
			fail(err)
		}
		if err := saveUserID(id); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "send", "choose":
		text := strings.TrimSpace(strings.Join(flag.Args()[1:], " "))
		if text == "" {
			fmt.Fprintf(os.Stderr, "%s: need text\n", cmd)
			os.Exit(1)
		}
		id, err := loadUserID()
		if err != nil {
			fail(err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		defer cancel()
		cc, cli, err := dial(ctx, o, id)
		if err != nil {
			fail(err)
		}
		defer cc.Close()

		reply, err := cli.Send(ctx, text, cmd == "choose")
		if err != nil {
			fail(err)
		}
		printReply(os.Stdout, reply)

	case "chat":
		id, err := loadUserID()
		if err != nil {
			fail(err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		cc, cli, err := dial(ctx, o, id)
		if err != nil {
			fail(err)
		}
		defer cc.Close()

		send := func(text string, choice bool) (model.Reply, error) {
			rctx, rcancel := context.WithTimeout(ctx, rpcTimeout)
			defer rcancel()
			return cli.Send(rctx, text, choice)
		}
		if err := chat(os.Stdin, os.Stdout, send); err != nil {
			fail(err)
		}

	default:
		usage()
	}
}
