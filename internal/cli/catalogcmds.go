package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lukasreiter/quorum/internal/prompt"
)

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List the available debate personas",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, p := range cat.Participants() {
			fmt.Printf("%s %s\n",
				speakerStyle.Render(p.ID),
				roundStyle.Render(fmt.Sprintf("(%s, %s)", p.Name, p.Role)))
			fmt.Printf("  stance: %s · contrarian %.2f · %s\n",
				prompt.Stance(p.Contrarian), p.Contrarian, p.Verbosity)
			if len(p.Expertise) > 0 {
				fmt.Printf("  expertise: %s\n", strings.Join(p.Expertise, ", "))
			}
			if p.Backend != "" {
				fmt.Printf("  backend: %s", p.Backend)
				if p.Model != "" {
					fmt.Printf(" (%s)", p.Model)
				}
				fmt.Println()
			}
			fmt.Println()
		}
		return nil
	},
}

var councilsCmd = &cobra.Command{
	Use:   "councils",
	Short: "List the available councils",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, c := range cat.Councils() {
			fmt.Printf("%s %s\n",
				speakerStyle.Render(c.ID),
				roundStyle.Render(fmt.Sprintf("(%s, %d rounds)", c.Name, c.Rounds)))
			fmt.Printf("  members: %s\n", strings.Join(c.Participants, ", "))
			if c.Focus != "" {
				fmt.Printf("  focus: %s\n", c.Focus)
			}
			fmt.Println()
		}
		return nil
	},
}
