package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/analytics"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/config"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/report"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/transcript"
)

func main() {
	in := flag.String("in", "", "path to an exported WhatsApp chat (.txt)")
	user := flag.String("user", "", "restrict the analysis to one participant")
	sections := flag.String("sections", "", "comma separated report sections (default: all)")
	anonymize := flag.Bool("anonymize", false, "replace participant names with pseudonyms")
	csvOut := flag.String("csv", "", "write the summary CSV to this path")
	xlsxOut := flag.String("xlsx", "", "write the XLSX workbook to this path")
	jsonOut := flag.String("json", "", "write the full JSON report to this path")
	policyFile := flag.String("policy", "", "YAML analysis policy overriding the defaults")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logrus.SetLevel(logrus.WarnLevel)
	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze-report -in chat.txt [-user NAME] [-sections a,b] [-anonymize] [-csv out.csv] [-xlsx out.xlsx] [-json out.json] [-policy policy.yaml]")
		os.Exit(2)
	}

	if err := run(*in, *user, *sections, *anonymize, *policyFile, *csvOut, *xlsxOut, *jsonOut); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
}

func run(in, user, sectionList string, anonymize bool, policyFile, csvOut, xlsxOut, jsonOut string) error {
	policy, err := config.LoadPolicy(policyFile)
	if err != nil {
		return fmt.Errorf("failed to load policy: %w", err)
	}

	selected, err := report.ParseSections(sectionList)
	if err != nil {
		return err
	}

	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	opts := transcript.DefaultOptions()
	opts.MediaPlaceholder = policy.MediaPlaceholder
	log, err := transcript.Parse(in, f, opts)
	if err != nil {
		return err
	}

	aggregator := report.NewAggregator(analytics.New(policy))
	r, err := aggregator.Generate(log, report.Request{
		Scope:     models.ParseScope(user),
		Sections:  selected,
		Anonymize: anonymize,
	})
	if err != nil {
		return err
	}

	printSummary(os.Stdout, r, len(log.Records))

	exports := []struct {
		path  string
		write func(io.Writer, *models.Report) error
	}{
		{jsonOut, report.WriteJSON},
		{csvOut, report.WriteCSV},
		{xlsxOut, report.WriteXLSX},
	}
	for _, e := range exports {
		if e.path == "" {
			continue
		}
		if err := writeFile(e.path, r, e.write); err != nil {
			return err
		}
		fmt.Printf("💾 Saved %s\n", e.path)
	}
	return nil
}

func writeFile(path string, r *models.Report, write func(io.Writer, *models.Report) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, r); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func printSummary(w io.Writer, r *models.Report, records int) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 70))
	fmt.Fprintln(w, "📊 WHATSAPP CHAT ANALYSIS")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "📁 Transcript: %s (%d records)\n", r.Transcript, records)
	fmt.Fprintf(w, "👤 Scope: %s\n", r.Scope)
	fmt.Fprintf(w, "🕒 Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))

	if st := r.BasicStats; st != nil {
		fmt.Fprintln(w, "\n📈 Summary:")
		fmt.Fprintf(w, "   • %-16s %d\n", "Messages:", st.TotalMessages)
		fmt.Fprintf(w, "   • %-16s %d\n", "Words:", st.TotalWords)
		fmt.Fprintf(w, "   • %-16s %d\n", "Media:", st.MediaMessages)
		fmt.Fprintf(w, "   • %-16s %d\n", "Links:", st.LinksShared)
	}

	if r.BusyUsers != nil && len(r.BusyUsers.Users) > 0 {
		fmt.Fprintln(w, "\n🗣️  Most Active:")
		for i, u := range r.BusyUsers.Users {
			if i >= 5 {
				fmt.Fprintf(w, "   ... and %d more participants\n", len(r.BusyUsers.Users)-5)
				break
			}
			fmt.Fprintf(w, "   %d. %-20s %5d (%.1f%%)\n", i+1, u.User, u.Messages, u.Percent)
		}
	}

	if s := r.Sentiment; s != nil && s.Classified > 0 {
		fmt.Fprintln(w, "\n💭 Sentiment:")
		fmt.Fprintf(w, "   😊 Positive %5.1f%%   😐 Neutral %5.1f%%   😞 Negative %5.1f%%\n",
			s.PositiveRatio*100, s.NeutralRatio*100, s.NegativeRatio*100)
	}

	if r.GroupDynamics != nil && r.GroupDynamics.Applicable {
		fmt.Fprintln(w, "\n🎭 Roles:")
		for _, role := range r.GroupDynamics.Roles {
			fmt.Fprintf(w, "   • %-20s %s\n", role.Sender, role.Role)
		}
	}

	if r.Badges != nil {
		fmt.Fprintln(w, "\n🏅 Badges:")
		for _, ub := range *r.Badges {
			if len(ub.Badges) == 0 {
				continue
			}
			names := make([]string, 0, len(ub.Badges))
			for _, b := range ub.Badges {
				names = append(names, b.Name)
			}
			fmt.Fprintf(w, "   • %-20s %s\n", ub.Sender, strings.Join(names, ", "))
		}
	}

	if r.Insights != nil {
		fmt.Fprintln(w, "\n💡 Insights:")
		for _, line := range *r.Insights {
			fmt.Fprintf(w, "   • %s\n", line)
		}
	}

	if len(r.Failures) > 0 {
		fmt.Fprintln(w, "\n⚠️  Failed sections:")
		for section, reason := range r.Failures {
			fmt.Fprintf(w, "   • %s: %s\n", section, reason)
		}
	}

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 70))
}
