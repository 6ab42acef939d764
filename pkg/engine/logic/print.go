package logic

import (
	"strconv"
	"strings"

	"wwrando/pkg/engine/world"
)

// String renders req in the expression grammar accepted by Parse
func String(w *world.World, req *world.Requirement) string {
	var sb strings.Builder
	write(&sb, w, req, false)
	return sb.String()
}

func write(sb *strings.Builder, w *world.World, req *world.Requirement, nested bool) {
	switch req.Kind {
	case world.And, world.Or:
		op := " and "
		if req.Kind == world.Or {
			op = " or "
		}
		if nested {
			sb.WriteByte('(')
		}
		for i := range req.Args {
			if i > 0 {
				sb.WriteString(op)
			}
			write(sb, w, &req.Args[i], true)
		}
		if nested {
			sb.WriteByte(')')
		}
	case world.Not:
		sb.WriteString("not ")
		if len(req.Args) == 1 {
			write(sb, w, &req.Args[0], true)
		}
	case world.HasItem:
		sb.WriteString(identifier(w.ItemName(req.Item)))
	case world.Count:
		sb.WriteString("count(")
		sb.WriteString(strconv.Itoa(req.Count))
		sb.WriteString(", ")
		sb.WriteString(identifier(w.ItemName(req.Item)))
		sb.WriteByte(')')
	case world.CanAccess:
		sb.WriteString("can_access(")
		if loc := w.Location(req.Location); loc != nil {
			sb.WriteString(identifier(loc.Name))
		}
		sb.WriteByte(')')
	case world.Setting:
		sb.WriteString("setting(")
		sb.WriteString(w.SettingName(req.Setting))
		sb.WriteByte(')')
	case world.Macro:
		sb.WriteString(identifier(w.MacroName(req.Macro)))
	case world.Impossible:
		sb.WriteString("Impossible")
	default:
		sb.WriteString("?")
	}
}
