package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"skincarechat/internal/catalog"
	"skincarechat/internal/config"
	"skincarechat/internal/msgfmt"
	"skincarechat/internal/store"
)

func runFormat(stdin io.Reader, out io.Writer, sender string, args []string) error {
	var s msgfmt.Sender
	switch strings.ToLower(strings.TrimSpace(sender)) {
	case string(msgfmt.Bot):
		s = msgfmt.Bot
	case string(msgfmt.User):
		s = msgfmt.User
	default:
		return fmt.Errorf("unknown sender %q (use bot or user)", sender)
	}

	in := stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	text, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	_, err = fmt.Fprintln(out, msgfmt.Format(s, strings.TrimRight(string(text), "\r\n")))
	return err
}

func runProducts(out io.Writer, category, query string) error {
	cfg := config.Load()
	products, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	if strings.TrimSpace(category) == "" && strings.TrimSpace(query) == "" {
		fmt.Fprintln(out, catalog.PromptChooseCategory)
		fmt.Fprintln(out, "Categories: "+strings.Join(products.Categories(), ", "))
		return nil
	}
	matches := products.Filter(category, query)
	if len(matches) == 0 {
		fmt.Fprintln(out, catalog.EmptyListing)
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tBRAND\tCATEGORY")
	for _, p := range matches {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Brand, p.Category)
	}
	return w.Flush()
}

type seedOptions struct {
	clientID    string
	productIDs  []int
	cleanup     bool
	databaseURL string
}

func runSeed(ctx context.Context, out io.Writer, opts seedOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	clientID := strings.TrimSpace(opts.clientID)
	if clientID == "" {
		return errors.New("--client is required")
	}
	cfg := config.Load()
	dbURL := strings.TrimSpace(opts.databaseURL)
	if dbURL == "" {
		dbURL = cfg.DatabaseURL
	}
	if dbURL == "" {
		return errors.New("seeding needs a persistent store; set DATABASE_URL or --db")
	}

	st, err := store.Open(ctx, dbURL, zerolog.Nop())
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.cleanup {
		if err := st.SaveSelection(ctx, clientID, nil); err != nil {
			return fmt.Errorf("cleanup selection: %w", err)
		}
		if err := st.ClearMessages(ctx, clientID); err != nil {
			return fmt.Errorf("cleanup messages: %w", err)
		}
		fmt.Fprintf(out, "cleanup complete client_id=%s\n", clientID)
		return nil
	}

	if len(opts.productIDs) == 0 {
		return errors.New("at least one --product is required")
	}
	products, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	for _, id := range opts.productIDs {
		if _, ok := products.Find(id); !ok {
			return fmt.Errorf("product %d: %w", id, catalog.ErrUnknownProduct)
		}
	}
	if err := st.SaveSelection(ctx, clientID, opts.productIDs); err != nil {
		return fmt.Errorf("save selection: %w", err)
	}
	fmt.Fprintf(out, "seed complete client_id=%s products=%d\n", clientID, len(opts.productIDs))
	return nil
}
