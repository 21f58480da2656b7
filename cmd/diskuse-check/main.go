/*
diskuse -- refuse uploads based on filesystem usage
Copyright (C) 2016-2022 Sergey Matveev <stargrave@stargrave.org>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, version 3 of the License.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <http://www.gnu.org/licenses/>.
*/

// Check whether the upload would be allowed.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"

	"github.com/dustin/go-humanize"
	"go.cypherpunks.ru/diskuse"
	"golang.org/x/term"
)

func usage() {
	fmt.Fprint(os.Stderr, diskuse.UsageHeader())
	fmt.Fprintf(os.Stderr, "diskuse-check -- check whether upload would be allowed\n\n")
	fmt.Fprintf(os.Stderr, "Usage: %s [options] -user USER PATH\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "       %s [options] -user USER -dump\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Exit status is 1 if upload is denied.")
	fmt.Fprintln(os.Stderr, "Options:")
	flag.PrintDefaults()
}

func main() {
	var (
		cfgPath  = flag.String("cfg", diskuse.DefaultCfgPath, "Path to configuration file")
		logPath  = flag.String("log", "", "Override path to logfile")
		user     = flag.String("user", "", "Session's user")
		group    = flag.String("group", "", "Session's primary group")
		groups   = flag.String("groups", "", "Comma separated supplementary groups")
		class    = flag.String("class", "", "Session's class, determined by -addr if empty")
		addrRaw  = flag.String("addr", "", "Remote address of the session")
		vhost    = flag.String("vhost", "", "Virtual host name")
		anon     = flag.String("anon", "", "Anonymous login root")
		cmd      = flag.String("cmd", diskuse.CmdSTOR, "Command to check")
		dump     = flag.Bool("dump", false, "Print applicable rules in precedence order")
		quiet    = flag.Bool("quiet", false, "Print only errors")
		debug    = flag.Bool("debug", false, "Print debug messages")
		version  = flag.Bool("version", false, "Print version information")
		warranty = flag.Bool("warranty", false, "Print warranty information")
	)
	log.SetFlags(log.Lshortfile)
	flag.Usage = usage
	flag.Parse()
	if *warranty {
		fmt.Println(diskuse.Warranty)
		return
	}
	if *version {
		fmt.Println(diskuse.VersionGet())
		return
	}
	if *user == "" || (!*dump && flag.NArg() != 1) {
		usage()
		os.Exit(1)
	}

	ctx, err := diskuse.CtxFromCmdline(*cfgPath, *logPath, *quiet, *debug)
	if err != nil {
		log.Fatalln("Error during initialization:", err)
	}
	var addr net.IP
	if *addrRaw != "" {
		if addr = net.ParseIP(*addrRaw); addr == nil {
			log.Fatalln("Invalid -addr:", *addrRaw)
		}
	}
	id := ctx.NewIdentity(*user, *group, diskuse.ExprParse([]string{*groups}), *class, addr)
	sess := ctx.NewSession(id, *vhost, *anon)

	if *dump {
		for i, rule := range sess.Rules {
			matched := rule.Matches(id, sess.Classifier)
			fmt.Printf("%d\t%s %s\tmatched: %v\n", i, diskuse.DirectiveName, rule, matched)
		}
		minFree := sess.MinFree()
		if minFree == nil {
			fmt.Println("No limit in effect")
		} else {
			fmt.Println("Max usage in effect:", diskuse.PercentFmt(1-*minFree))
		}
		return
	}

	pth := flag.Arg(0)
	res, d := sess.Check(*cmd, pth)
	minFree := sess.MinFree()
	if term.IsTerminal(int(os.Stdout.Fd())) {
		line := fmt.Sprintf("%s %s: %s", *cmd, pth, res)
		switch {
		case !diskuse.IsUploadCmd(*cmd):
			line += " (not an upload command)"
		case minFree == nil:
			line += " (no limit in effect)"
		case d.Known:
			line += fmt.Sprintf(
				" (used %s, max %s, %s free)",
				diskuse.PercentFmt(d.CurUsage),
				diskuse.PercentFmt(d.MaxUsage),
				humanize.IBytes(d.Stat.FreeBytes()),
			)
		default:
			line += fmt.Sprintf(" (usage unknown: %s)", d.Err)
		}
		fmt.Println(line)
	} else {
		les := diskuse.LEs{
			{K: "Cmd", V: *cmd},
			{K: "Path", V: pth},
			{K: "User", V: id.User},
			{K: "Result", V: res.String()},
		}
		if d.Known {
			les = append(
				les,
				diskuse.LE{K: "CurUsage", V: diskuse.PercentFmt(d.CurUsage)},
				diskuse.LE{K: "MaxUsage", V: diskuse.PercentFmt(d.MaxUsage)},
				diskuse.LE{K: "FreeBytes", V: d.Stat.FreeBytes()},
			)
		}
		fmt.Print(les.Rec())
	}
	if res.Denied {
		os.Exit(1)
	}
}
