package helper

import "fmt"

func PrintHelp() {
	fmt.Print(`Usage:
  meetupsplit [split] [MEETUPS_JSON]
  meetupsplit COMMAND [OPTIONS]

Commands:
   split           classify every meetup by RSS pubDate year (default command)
   check           classify one feed (--url URL [--year N])
   help            show this help

Environment:
   TARGET_YEAR         year to look for (default 2026)
   MEETUPS_FILE        input file (default master_meetups.json)
   OUTPUT_DIR          directory for the three output files (default .)
   SLEEP_MIN/SLEEP_MAX politeness delay range (default 10s..60s)
   MEETUPSPLIT_CONFIG  optional YAML file with the same settings
`)
}
