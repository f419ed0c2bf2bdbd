package output

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// ServiceRow is the flattened registry entry used for listing services.
type ServiceRow struct {
	Name        string `json:"name" yaml:"name"`
	Scope       string `json:"scope" yaml:"scope"`
	Client      string `json:"client" yaml:"client"`
	RedirectURI string `json:"redirectURI" yaml:"redirect-uri"`
	Exchange    bool   `json:"exchange" yaml:"exchange"`
}

func WriteServiceTable(w io.Writer, rows []ServiceRow) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tSCOPE\tCLIENT\tEXCHANGE")
	for _, r := range rows {
		exchange := "-"
		if r.Exchange {
			exchange = "yes"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, r.Scope, r.Client, exchange)
	}
	_ = tw.Flush()
}
