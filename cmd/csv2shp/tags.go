package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the configured naming tags",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(viper.GetViper())
		for i, tag := range cfg.Conversion.NamingTags {
			marker := ""
			if i == 0 {
				marker = " (default)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", tag, marker)
		}
	},
}

func init() {
	rootCmd.AddCommand(tagsCmd)
}
