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

// Pre-command hook serving single FTP session.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"

	"go.cypherpunks.ru/diskuse"
)

func usage() {
	fmt.Fprint(os.Stderr, diskuse.UsageHeader())
	fmt.Fprintf(os.Stderr, "diskuse-hook -- pre-command hook for single session\n\n")
	fmt.Fprintf(os.Stderr, "Usage: %s [options] -user USER\n", os.Args[0])
	fmt.Fprintln(os.Stderr, `Reads "CMD ARG" lines from stdin, ARG is the canonicalized path.
Answers with "DECLINED" or "552 Insufficient disk space" line for each.`)
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
	if *user == "" {
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
	sess := ctx.NewSession(
		ctx.NewIdentity(*user, *group, diskuse.ExprParse([]string{*groups}), *class, addr),
		*vhost, *anon,
	)

	scanner := bufio.NewScanner(os.Stdin)
	out := bufio.NewWriter(os.Stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cols := strings.SplitN(line, " ", 2)
		var pth string
		if len(cols) == 2 {
			pth = strings.TrimSpace(cols[1])
		}
		fmt.Fprintln(out, sess.PreCmd(cols[0], pth))
		if err = out.Flush(); err != nil {
			log.Fatalln(err)
		}
	}
	if err = scanner.Err(); err != nil {
		log.Fatalln(err)
	}
}
