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

package diskuse

import (
	"fmt"
	"strings"
)

const (
	CmdAPPE = "APPE"
	CmdSTOR = "STOR"
	CmdSTOU = "STOU"

	R552 = 552

	InsufficientSpace = "Insufficient disk space"
)

// IsUploadCmd tells if the command starts client-to-server transfer.
func IsUploadCmd(cmd string) bool {
	switch strings.ToUpper(cmd) {
	case CmdAPPE, CmdSTOR, CmdSTOU:
		return true
	}
	return false
}

// Result of the pre-command hook. Zero value means declined: the
// command is processed further as usual.
type Result struct {
	Denied bool
	Code   int
	Msg    string
}

func (r Result) String() string {
	if !r.Denied {
		return "DECLINED"
	}
	return fmt.Sprintf("%d %s", r.Code, r.Msg)
}

// Session is the state of single client connection. Commands of one
// session are checked sequentially.
type Session struct {
	Ctx        *Ctx
	Id         *Identity
	Rules      []*Rule
	Classifier Classifier
	Stat       Stater

	policy Policy
}

func (ctx *Ctx) NewSession(id *Identity, vhost, anon string) *Session {
	return &Session{
		Ctx:        ctx,
		Id:         id,
		Rules:      ctx.Rules(vhost, anon),
		Classifier: ExprClassifier{},
		Stat:       StatFS,
	}
}

// MinFree resolves the limit once per session.
func (s *Session) MinFree() *float64 {
	cached := s.policy.Resolved()
	minFree := s.policy.Resolve(s.Rules, s.Id, s.Classifier)
	if cached {
		return minFree
	}
	rule := s.policy.Rule()
	if rule == nil {
		s.Ctx.LogD("diskuse-nopolicy", LEs{{"User", s.Id.User}}, func(les LEs) string {
			return "no matching rule"
		})
	} else {
		s.Ctx.LogD("diskuse-policy", LEs{
			{"User", s.Id.User},
			{"Scope", rule.Scope},
			{"Limit", rule.Raw},
		}, func(les LEs) string {
			return rule.String()
		})
	}
	return minFree
}

// PreCmd checks upload initiating commands against the session's limit.
// pth is the already canonicalized destination path.
func (s *Session) PreCmd(cmd, pth string) Result {
	res, _ := s.Check(cmd, pth)
	return res
}

// Check is PreCmd also returning the decision details. Decision is zero
// for commands that are not checked.
func (s *Session) Check(cmd, pth string) (Result, Decision) {
	if !IsUploadCmd(cmd) {
		return Result{}, Decision{}
	}
	d := Evaluate(pth, s.MinFree(), s.Stat)
	if d.Err != nil {
		s.Ctx.LogD("diskuse-stat", LEs{{"Dir", d.Probe}, {"Err", d.Err}}, func(les LEs) string {
			return "unable to stat fs"
		})
		return Result{}, d
	}
	if d.Known {
		s.Ctx.LogD("diskuse-free", LEs{
			{"Dir", d.Probe},
			{"FreeBytes", d.Stat.FreeBytes()},
			{"TotalBytes", d.Stat.TotalBytes()},
			{"CurUsage", PercentFmt(d.CurUsage)},
			{"MaxUsage", PercentFmt(d.MaxUsage)},
		}, func(les LEs) string {
			return "sampled"
		})
	}
	if !d.Deny {
		return Result{}, d
	}
	s.Ctx.LogI("diskuse-deny", LEs{
		{"Cmd", strings.ToUpper(cmd)},
		{"User", s.Id.User},
		{"MaxUsage", PercentFmt(d.MaxUsage)},
		{"CurUsage", PercentFmt(d.CurUsage)},
		{"Dir", d.Probe},
		{"FreeBytes", d.Stat.FreeBytes()},
	}, func(les LEs) string {
		return "denied"
	})
	return Result{Denied: true, Code: R552, Msg: InsufficientSpace}, d
}
