package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-recipe-catalog/internal/seed"
	"github.com/goliatone/go-recipe-catalog/result"
	"github.com/goliatone/go-recipe-catalog/search"
)

var entities = []string{"recipes", "books", "authors", "stores"}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.container.Migrate(cmd.Context())
		},
	}
}

func (a *app) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "Load authors, books, stores and recipes from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			doc, err := seed.Decode(f)
			if err != nil {
				return err
			}
			if err := a.container.Migrate(cmd.Context()); err != nil {
				return err
			}
			sum, err := seed.Apply(cmd.Context(), a.container.Catalog(), doc)
			if err != nil {
				return err
			}
			return a.printJSON(sum)
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "list ENTITY",
		Short:     "List every record of an entity",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: entities,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat := a.container.Catalog()

			switch args[0] {
			case "recipes":
				return a.printJSON(cat.Recipes.GetAll(ctx))
			case "books":
				return a.printJSON(cat.Books.GetAll(ctx))
			case "authors":
				return a.printJSON(cat.Authors.GetAll(ctx))
			default:
				return a.printJSON(cat.Stores.GetAll(ctx))
			}
		},
	}
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "get ENTITY ID",
		Short:     "Show one record",
		Args:      cobra.ExactArgs(2),
		ValidArgs: entities,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			cat := a.container.Catalog()

			switch args[0] {
			case "recipes":
				return printResult(a, cat.Recipes.GetByID(ctx, id))
			case "books":
				return printResult(a, cat.Books.GetByID(ctx, id))
			case "authors":
				return printResult(a, cat.Authors.GetByID(ctx, id))
			case "stores":
				return printResult(a, cat.Stores.GetByID(ctx, id))
			}
			return fmt.Errorf("unknown entity %q", args[0])
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "delete ENTITY ID",
		Short:     "Delete one record",
		Args:      cobra.ExactArgs(2),
		ValidArgs: entities,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			cat := a.container.Catalog()

			switch args[0] {
			case "recipes":
				return printResult(a, cat.Recipes.Delete(ctx, id))
			case "books":
				return printResult(a, cat.Books.Delete(ctx, id))
			case "authors":
				return printResult(a, cat.Authors.Delete(ctx, id))
			case "stores":
				return printResult(a, cat.Stores.Delete(ctx, id))
			}
			return fmt.Errorf("unknown entity %q", args[0])
		},
	}
}

func (a *app) searchCmd() *cobra.Command {
	var (
		q                         search.Query
		rating                    int
		bookID, storeID, authorID int64
	)

	cmd := &cobra.Command{
		Use:   "search [TERM]",
		Short: "Search recipes by name, book, author or store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				q.Term = args[0]
			}
			flags := cmd.Flags()
			if flags.Changed("rating") {
				q.Rating = &rating
			}
			if flags.Changed("book") {
				q.BookID = &bookID
			}
			if flags.Changed("store") {
				q.StoreID = &storeID
			}
			if flags.Changed("author") {
				q.AuthorID = &authorID
			}
			return printResult(a, a.container.Catalog().Recipes.Search(cmd.Context(), q))
		},
	}

	f := cmd.Flags()
	f.IntVarP(&rating, "rating", "r", 0, "exact rating (1-5)")
	f.Int64Var(&bookID, "book", 0, "book ID")
	f.Int64Var(&storeID, "store", 0, "store ID")
	f.Int64Var(&authorID, "author", 0, "author ID")
	f.IntVarP(&q.Page, "page", "p", 1, "page number")
	f.IntVar(&q.PageSize, "page-size", search.DefaultPageSize, "results per page")
	f.StringVar(&q.SortColumn, "sort", "", "sort column (name, rating, date)")
	f.BoolVar(&q.SortDescending, "desc", false, "sort descending")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print cache counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printJSON(a.container.CacheService().Stats())
		},
	}
}

func printResult[T any](a *app, r result.Result[T]) error {
	if !r.OK() {
		return errors.New(r.Message())
	}
	return a.printJSON(r.Value())
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ID %q", s)
	}
	return id, nil
}
