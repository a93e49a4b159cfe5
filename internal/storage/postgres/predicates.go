package postgres

import (
	"strings"

	"github.com/lib/pq"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"

	"github.com/carson-networks/expense-server/internal/query"
)

func whereMods(predicates []query.Predicate) []bob.Mod[*dialect.SelectQuery] {
	mods := make([]bob.Mod[*dialect.SelectQuery], 0, len(predicates))
	for _, p := range predicates {
		mods = append(mods, sm.Where(expression(p)))
	}
	return mods
}

func orderMods(o query.Order) []bob.Mod[*dialect.SelectQuery] {
	terms := o.Terms()
	mods := make([]bob.Mod[*dialect.SelectQuery], len(terms))
	for i, t := range terms {
		if t.Direction == query.Desc {
			mods[i] = sm.OrderBy(psql.Quote(string(t.Field))).Desc()
		} else {
			mods[i] = sm.OrderBy(psql.Quote(string(t.Field))).Asc()
		}
	}
	return mods
}

// ident renders a column name as a quoted identifier. Field values come
// from a closed set, never from request input.
func ident(f query.Field) string {
	return `"` + string(f) + `"`
}

func expression(p query.Predicate) bob.Expression {
	switch p := p.(type) {
	case query.Compare:
		col := psql.Quote(string(p.Field))
		arg := psql.Arg(p.Value)
		switch p.Op {
		case query.OpGT:
			return col.GT(arg)
		case query.OpGTE:
			return col.GTE(arg)
		case query.OpLTE:
			return col.LTE(arg)
		default:
			return col.EQ(arg)
		}
	case query.FoldEqual:
		return psql.Raw("lower("+ident(p.Field)+") = ?", p.Value)
	case query.FoldIn:
		return psql.Raw("lower("+ident(p.Field)+") = ANY(?)", pq.Array(p.Values))
	case query.FoldContains:
		return psql.Raw(ident(p.Field)+" ILIKE ?", "%"+EscapeLike(p.Term)+"%")
	case query.AnyOf:
		subs := make([]bob.Expression, len(p.Predicates))
		for i, sub := range p.Predicates {
			subs[i] = expression(sub)
		}
		return psql.Or(subs...)
	default:
		return psql.Raw("FALSE")
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike makes term match literally inside a LIKE pattern that uses the
// default backslash escape.
func EscapeLike(term string) string {
	return likeEscaper.Replace(term)
}
