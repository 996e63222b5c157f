// Command boardq queries a running boardd.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ptt/boardd/ansi"
	"github.com/ptt/boardd/pttbbs"
)

const DefaultAddr = "127.0.0.1:5150"

var (
	addr  string
	plain bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "boardq",
		Short:         "Query a boardd over its memcached text protocol",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&addr, "addr", "a", DefaultAddr, "boardd address")
	root.PersistentFlags().BoolVar(&plain, "plain", false, "strip color escapes from text")

	root.AddCommand(
		&cobra.Command{
			Use:   "get <key>...",
			Short: "Fetch raw keys",
			Args:  cobra.MinimumNArgs(1),
			RunE:  runGet,
		},
		&cobra.Command{
			Use:   "board <bid|name>",
			Short: "Show a board",
			Args:  cobra.ExactArgs(1),
			RunE:  runBoard,
		},
		&cobra.Command{
			Use:   "list <bid|name> [offset [length]]",
			Short: "List articles of a board",
			Args:  cobra.RangeArgs(1, 3),
			RunE:  runList,
		},
		&cobra.Command{
			Use:   "article <bid|name> <filename|#aid>",
			Short: "Print an article",
			Args:  cobra.ExactArgs(2),
			RunE:  runArticle,
		},
		&cobra.Command{
			Use:   "refs <bid|name> <filename|#aid>",
			Short: "List the articles an article refers to by aid",
			Args:  cobra.ExactArgs(2),
			RunE:  runRefs,
		},
		&cobra.Command{
			Use:   "aid <#aid|filename>...",
			Short: "Convert between aids and article file names",
			Args:  cobra.MinimumNArgs(1),
			RunE:  runAid,
		},
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "boardq:", err)
		os.Exit(1)
	}
}

func client() *pttbbs.RemotePtt {
	return pttbbs.NewRemotePtt(addr, 1)
}

func text(b []byte) []byte {
	if plain {
		return ansi.Strip(b)
	}
	return b
}

// resolveBoard accepts a board id or a board name.
func resolveBoard(p *pttbbs.RemotePtt, s string) (int, error) {
	if bid, err := strconv.Atoi(s); err == nil {
		return bid, nil
	}
	bid, err := p.BrdName2Bid(s)
	if err != nil {
		return 0, fmt.Errorf("board %s: %w", s, err)
	}
	return bid, nil
}

// resolveFilename accepts an article file name or an aid.
func resolveFilename(s string) (string, error) {
	if pttbbs.IsValidArticleFileName(s) {
		return s, nil
	}
	aid, err := pttbbs.ParseAid(s)
	if err != nil {
		return "", fmt.Errorf("%q is neither a file name nor an aid", s)
	}
	return aid.Filename(), nil
}

func runGet(cmd *cobra.Command, args []string) error {
	vals, err := client().Get(args...)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for _, k := range args {
		v, ok := vals[k]
		if !ok {
			fmt.Fprintf(w, "%s: (none)\n", k)
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", k, text(v))
	}
	return nil
}

func runBoard(cmd *cobra.Command, args []string) error {
	p := client()
	bid, err := resolveBoard(p, args[0])
	if err != nil {
		return err
	}
	brd, err := p.GetBoard(bid)
	if err != nil {
		return err
	}
	count, err := p.GetArticleCount(bid)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "bid:      %d\n", brd.Bid)
	fmt.Fprintf(w, "brdname:  %s\n", brd.BrdName)
	fmt.Fprintf(w, "title:    %s\n", text([]byte(brd.Title)))
	fmt.Fprintf(w, "class:    %s\n", brd.Class)
	fmt.Fprintf(w, "BM:       %s\n", brd.BM)
	fmt.Fprintf(w, "parent:   %d\n", brd.Parent)
	fmt.Fprintf(w, "isboard:  %v\n", brd.IsBoard)
	fmt.Fprintf(w, "over18:   %v\n", brd.Over18)
	fmt.Fprintf(w, "nuser:    %d\n", brd.Nuser)
	fmt.Fprintf(w, "articles: %d\n", count)
	if !brd.IsBoard {
		children, err := p.GetBoardChildren(bid)
		if err != nil {
			return err
		}
		ids := make([]string, len(children))
		for i, c := range children {
			ids[i] = strconv.Itoa(c)
		}
		fmt.Fprintf(w, "children: %s\n", strings.Join(ids, " "))
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	p := client()
	bid, err := resolveBoard(p, args[0])
	if err != nil {
		return err
	}
	var offset, length int
	if len(args) > 1 {
		if offset, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("offset: %w", err)
		}
	}
	if len(args) > 2 {
		if length, err = strconv.Atoi(args[2]); err != nil {
			return fmt.Errorf("length: %w", err)
		}
	}
	articles, err := p.GetArticleList(bid, offset, length)
	if err != nil {
		return err
	}
	writeArticles(cmd.OutOrStdout(), articles)
	return nil
}

func writeArticles(w io.Writer, articles []pttbbs.Article) {
	for _, a := range articles {
		aidc := "-"
		if aid, err := pttbbs.AidFromFilename(a.FileName); err == nil {
			aidc = "#" + aid.String()
		}
		fmt.Fprintf(w, "%6d %-10s %5s %3d %-12s %s\n", a.Offset, aidc, a.Date, a.Recommend, a.Owner, text([]byte(a.Title)))
	}
}

func fetchArticle(args []string) (brdname string, content []byte, err error) {
	p := client()
	bid, err := resolveBoard(p, args[0])
	if err != nil {
		return "", nil, err
	}
	filename, err := resolveFilename(args[1])
	if err != nil {
		return "", nil, err
	}
	brd, err := p.GetBoard(bid)
	if err != nil {
		return "", nil, err
	}
	content, err = p.GetArticleContent(bid, filename)
	if err != nil {
		return "", nil, err
	}
	if len(content) == 0 {
		return "", nil, fmt.Errorf("%s/%s: %w", brd.BrdName, filename, pttbbs.ErrNotFound)
	}
	return brd.BrdName, content, nil
}

func runArticle(cmd *cobra.Command, args []string) error {
	_, content, err := fetchArticle(args)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(text(content))
	return err
}

func runRefs(cmd *cobra.Command, args []string) error {
	brdname, content, err := fetchArticle(args)
	if err != nil {
		return err
	}
	refs := findAidRefs(brdname, ansi.Strip(content))
	w := cmd.OutOrStdout()
	for _, r := range refs {
		fmt.Fprintf(w, "%s #%s %s\n", r.BrdName, r.Aid, r.Filename)
	}
	return nil
}

func runAid(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	for _, s := range args {
		if aid, err := pttbbs.AidFromFilename(s); err == nil {
			fmt.Fprintf(w, "%s #%s\n", s, aid)
			continue
		}
		aid, err := pttbbs.ParseAid(s)
		if err != nil {
			return fmt.Errorf("%q: %w", s, err)
		}
		fmt.Fprintf(w, "#%s %s\n", aid, aid.Filename())
	}
	return nil
}
