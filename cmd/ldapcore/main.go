// Command ldapcore is a thin driver over the ldapcore package: one
// subcommand per connection operation, for manual exercise and
// scripting against a real directory server.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/georgib0y/ldapcore"
	"github.com/georgib0y/ldapcore/internal/entry"
	"github.com/georgib0y/ldapcore/internal/filter"
	"github.com/georgib0y/ldapcore/internal/message"
	"github.com/georgib0y/ldapcore/internal/modify"
	"github.com/georgib0y/ldapcore/internal/schema"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

var logger = log.New(os.Stderr, fmt.Sprintf("ldapcore[%s]: ", uuid.New()), log.Lshortfile)

func main() {
	app := &cli.App{
		Name:  "ldapcore",
		Usage: "drive an LDAPv3 connection from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "uri", Value: "ldap://localhost:389", Usage: "ldap://, ldaps:// or ldapi:// connection URI"},
			&cli.StringFlag{Name: "bind-dn", Usage: "DN to simple-bind as before the operation runs"},
			&cli.StringFlag{Name: "bind-password"},
			&cli.StringFlag{Name: "schema-file", Usage: "slapd-style attributetype/objectclass definitions to load before modify"},
		},
		Commands: []*cli.Command{
			searchCommand,
			addCommand,
			deleteCommand,
			modifyCommand,
			compareCommand,
			modifyDNCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}

func loadSchema(c *cli.Context) (*schema.Registry, error) {
	path := c.String("schema-file")
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("schema file: %w", err)
	}
	defer f.Close()

	reg := schema.NewRegistry()
	if err := reg.LoadDefinitions(f); err != nil {
		return nil, err
	}
	return reg, nil
}

func dialAndBind(c *cli.Context) (*ldapcore.Conn, error) {
	conn, err := ldapcore.Dial(c.String("uri"))
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	if dn := c.String("bind-dn"); dn != "" {
		if err := conn.Bind(dn, c.String("bind-password"), nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("bind: %w", err)
		}
	}

	return conn, nil
}

var searchCommand = &cli.Command{
	Name:      "search",
	Usage:     "run a search and print matching entries",
	ArgsUsage: "<base-dn> <filter> [attribute...]",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "scope", Value: "sub", Usage: "base, one or sub"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 2 {
			return cli.Exit("search requires a base DN and a filter", 1)
		}

		conn, err := dialAndBind(c)
		if err != nil {
			return err
		}
		defer conn.Close()

		f, err := ldapcore.SearchFilter(c.Args().Get(1), filter.ModeUnified)
		if err != nil {
			return err
		}

		scope, err := parseScope(c.String("scope"))
		if err != nil {
			return err
		}

		req := &message.SearchRequest{
			BaseObject: c.Args().Get(0),
			Scope:      scope,
			Filter:     f,
			Attributes: c.Args().Slice()[min(2, c.NArg()):],
		}

		cur, err := conn.Search(req, nil)
		if err != nil {
			return err
		}
		defer cur.Close()

		for cur.Next() {
			if e := cur.Entry(); e != nil {
				printEntry(e)
			}
			if r := cur.Reference(); r != nil {
				fmt.Printf("# referral: %s\n", strings.Join(r, ", "))
			}
		}
		return cur.Err()
	},
}

var addCommand = &cli.Command{
	Name:      "add",
	Usage:     "create a new entry",
	ArgsUsage: "<dn> <attr=value...>",
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return cli.Exit("add requires a DN", 1)
		}

		conn, err := dialAndBind(c)
		if err != nil {
			return err
		}
		defer conn.Close()

		attrs, err := parseAttrValues(c.Args().Slice()[1:])
		if err != nil {
			return err
		}

		partials := make([]message.PartialAttribute, 0, len(attrs))
		for attr, vals := range attrs {
			partials = append(partials, message.PartialAttribute{Type: attr, Values: vals})
		}

		return conn.Add(c.Args().Get(0), partials, nil)
	},
}

var deleteCommand = &cli.Command{
	Name:      "delete",
	Usage:     "remove a leaf entry",
	ArgsUsage: "<dn>",
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return cli.Exit("delete requires a DN", 1)
		}

		conn, err := dialAndBind(c)
		if err != nil {
			return err
		}
		defer conn.Close()

		return conn.Delete(c.Args().Get(0), nil)
	},
}

var modifyCommand = &cli.Command{
	Name:      "modify",
	Usage:     "add, delete or replace attribute values on one entry",
	ArgsUsage: "<dn> <add|delete|replace> <attr=value...>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "strict", Usage: "skip dedup/prefetch and send the request verbatim"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 2 {
			return cli.Exit("modify requires a DN and an operation", 1)
		}

		op, err := parseModOp(c.Args().Get(1))
		if err != nil {
			return err
		}

		attrs, err := parseAttrValues(c.Args().Slice()[2:])
		if err != nil {
			return err
		}

		reg, err := loadSchema(c)
		if err != nil {
			return err
		}

		conn, err := dialAndBind(c)
		if err != nil {
			return err
		}
		defer conn.Close()

		dn, err := entry.ParseDN(c.Args().Get(0))
		if err != nil {
			return err
		}

		var opts []ldapcore.DirectoryOption
		if reg != nil {
			opts = append(opts, ldapcore.WithSchemaRegistry(reg))
		}

		dir := ldapcore.NewDirectory(conn, dn, opts...)
		return dir.Modify(toRequests(op, attrs), c.Bool("strict"))
	},
}

var compareCommand = &cli.Command{
	Name:      "compare",
	Usage:     "evaluate an equality assertion against a stored attribute",
	ArgsUsage: "<dn> <attr> <value>",
	Action: func(c *cli.Context) error {
		if c.NArg() < 3 {
			return cli.Exit("compare requires a DN, attribute and value", 1)
		}

		conn, err := dialAndBind(c)
		if err != nil {
			return err
		}
		defer conn.Close()

		ok, err := conn.Compare(c.Args().Get(0), c.Args().Get(1), c.Args().Get(2), nil)
		if err != nil {
			return err
		}
		fmt.Println(ok)
		return nil
	},
}

var modifyDNCommand = &cli.Command{
	Name:      "moddn",
	Usage:     "rename or move an entry",
	ArgsUsage: "<dn> <new-rdn> [new-superior]",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "delete-old-rdn", Value: true},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 2 {
			return cli.Exit("moddn requires a DN and a new RDN", 1)
		}

		conn, err := dialAndBind(c)
		if err != nil {
			return err
		}
		defer conn.Close()

		newSuperior := c.Args().Get(2)
		return conn.ModifyDN(c.Args().Get(0), c.Args().Get(1), c.Bool("delete-old-rdn"), newSuperior, newSuperior != "", nil)
	},
}

func parseScope(s string) (message.SearchScope, error) {
	switch strings.ToLower(s) {
	case "base":
		return message.ScopeBaseObject, nil
	case "one":
		return message.ScopeSingleLevel, nil
	case "sub", "":
		return message.ScopeWholeSubtree, nil
	default:
		return 0, fmt.Errorf("unknown scope %q", s)
	}
}

func parseAttrValues(args []string) (map[string][]string, error) {
	out := map[string][]string{}
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("expected attr=value, got %q", a)
		}
		out[k] = append(out[k], v)
	}
	return out, nil
}

func parseModOp(s string) (modOp, error) {
	switch strings.ToLower(s) {
	case "add":
		return modOpAdd, nil
	case "delete":
		return modOpDelete, nil
	case "replace":
		return modOpReplace, nil
	default:
		return 0, fmt.Errorf("unknown modify operation %q", s)
	}
}

type modOp int

const (
	modOpAdd modOp = iota
	modOpDelete
	modOpReplace
)

func toRequests(op modOp, attrs map[string][]string) []modify.Request {
	switch op {
	case modOpAdd:
		return ldapcore.AddAttrs(attrs)
	case modOpDelete:
		return ldapcore.DeleteAttrs(attrs)
	default:
		return ldapcore.ReplaceAttrs(attrs)
	}
}

func printEntry(e *message.SearchResultEntry) {
	fmt.Println(e.ObjectName)
	for _, a := range e.Attributes {
		for _, v := range a.Values {
			fmt.Printf("  %s: %s\n", a.Type, v)
		}
	}
}
