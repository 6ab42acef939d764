package renderer

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/gookit/color"

	"wwrando/pkg/engine/world"
	"wwrando/pkg/game/generator"
	"wwrando/pkg/game/locale"
	"wwrando/pkg/game/spoiler"
	"wwrando/pkg/game/state"
)

var (
	ColorHeading     color.Style
	ColorAction      color.Style
	ColorActionShort color.Style
	ColorItem        color.Style
	ColorLocation    color.Style
	ColorWarn        color.Style
	ColorDenied      color.Style
	ColorSubtle      color.Style

	regexpStringFunctions = regexp.MustCompile(`([A-Z]+){([^{}]+)}`)
)

// InitColors initializes the color styles. With enabled false every style
// renders plain text.
func InitColors(enabled bool) {
	color.Enable = enabled

	ColorHeading = color.Style{color.FgCyan, color.OpBold}
	ColorAction = color.Style{color.FgMagenta}
	ColorActionShort = color.Style{color.FgMagenta, color.OpBold}
	ColorItem = color.Style{color.FgGreen, color.OpBold}
	ColorLocation = color.Style{color.FgBlue}
	ColorWarn = color.Style{color.FgYellow, color.OpBold}
	ColorDenied = color.Style{color.FgRed, color.OpBold}
	ColorSubtle = color.Style{color.FgGray, color.OpBold}
}

// FormatString formats a string with special markup:
// GT{key} ITEM{name} LOC{name} WARN{text} ERR{text} SUBTLE{text} ACTION{word}
func FormatString(msg string, a ...any) string {
	ret := msg
	if len(a) > 0 {
		ret = fmt.Sprintf(msg, a...)
	}

	for _, match := range regexpStringFunctions.FindAllStringSubmatch(ret, -1) {
		function := match[1]
		operand := match[2]

		var val string
		switch function {
		case "GT":
			val = locale.Get(operand)
		case "ITEM":
			val = ColorItem.Sprint(operand)
		case "LOC":
			val = ColorLocation.Sprint(operand)
		case "WARN":
			val = ColorWarn.Sprint(operand)
		case "ERR":
			val = ColorDenied.Sprint(operand)
		case "SUBTLE":
			val = ColorSubtle.Sprint(operand)
		case "ACTION":
			val = ColorActionShort.Sprint(operand[0:1]) + ColorAction.Sprint(operand[1:])
		default:
			return fmt.Sprintf("ERROR, function not found: %v -> %v", function, operand)
		}

		ret = strings.Replace(ret, match[0], val, -1)
	}

	return ret
}

// Console renders to a text stream, usually the terminal
type Console struct {
	out   io.Writer
	width int
}

// NewConsole creates a console renderer. Pane rules are width runes wide.
func NewConsole(out io.Writer, width int) *Console {
	if width < 20 {
		width = 20
	}
	return &Console{out: out, width: width}
}

// Init initializes the console colors from the output stream's capabilities
func (c *Console) Init(colors bool) {
	InitColors(colors)
}

// PrintString prints a formatted string
func (c *Console) PrintString(msg string, a ...any) {
	fmt.Fprint(c.out, FormatString(msg, a...))
}

// PrintBullet prints a bulleted item
func (c *Console) PrintBullet(txt string, a ...any) {
	fmt.Fprintln(c.out, "- "+FormatString(txt, a...))
}

// PrintPane prints a rule with label centred in it
func (c *Console) PrintPane(label string) {
	label = " " + label + " "
	labelLen := len([]rune(label))
	sideLen := (c.width - labelLen) / 2
	if sideLen < 1 {
		sideLen = 1
	}
	rightLen := c.width - sideLen - labelLen
	if rightLen < 1 {
		rightLen = 1
	}

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, ColorSubtle.Sprint(strings.Repeat("─", sideLen))+
		ColorHeading.Sprint(label)+
		ColorSubtle.Sprint(strings.Repeat("─", rightLen)))
}

func (c *Console) rule() {
	fmt.Fprintln(c.out, ColorSubtle.Sprint(strings.Repeat("─", c.width)))
}

// Result prints a generated seed with its playthrough
func (c *Console) Result(res *generator.Result) {
	multi := len(res.Worlds) > 1

	c.PrintPane(locale.Get("SPOILER_PLAYTHROUGH"))
	for i, sphere := range res.Playthrough {
		c.PrintString("SUBTLE{%s}\n", locale.Get("SPOILER_SPHERE", i+1))
		for _, loc := range sphere {
			c.PrintBullet("%s", placement(res.Worlds, loc, multi))
		}
	}

	if len(res.Warnings) > 0 {
		c.PrintPane(locale.Get("SPOILER_WARNINGS"))
		for _, w := range res.Warnings {
			c.PrintBullet("WARN{%s}", locale.Get("WARN_RACE_DEMOTED", w.Location))
		}
	}

	c.rule()
	c.PrintString("%s\n", locale.Get("GEN_DONE",
		ColorItem.Sprint(res.Seed), res.Hash, res.Duration.Round(time.Millisecond)))
}

func placement(worlds []*world.World, loc *world.Location, multi bool) string {
	item := spoiler.ItemName(worlds, loc.CurrentItem)
	if !multi {
		return fmt.Sprintf("LOC{%s}: ITEM{%s}", loc.Name, item)
	}
	return fmt.Sprintf("SUBTLE{W%d} LOC{%s}: ITEM{%s} SUBTLE{W%d}",
		loc.World+1, loc.Name, item, loc.CurrentItem.World+1)
}

// Failure prints why a seed could not be generated
func (c *Console) Failure(err error) {
	c.PrintString("ERR{%s}\n", locale.Get("GEN_FAILED", err))
}

// Check prints a rule set check report
func (c *Console) Check(report *generator.CheckReport) {
	c.PrintPane("check")
	for _, name := range report.Unreachable {
		c.PrintBullet("WARN{%s}", locale.Get("CHECK_UNREACHABLE", name))
	}
	if report.VanillaErr != nil {
		c.PrintBullet("ERR{%s}", locale.Get("GEN_FAILED", report.VanillaErr))
	}
	if report.OK() {
		c.PrintString("%s\n", locale.Get("CHECK_OK", report.Locations, report.Items, report.Macros))
	}
	c.rule()
}

// MassSummary prints the outcome of a mass test
func (c *Console) MassSummary(sum generator.MassSummary) {
	c.PrintPane("mass-test")
	c.PrintString("%s\n", locale.Get("MASS_SUMMARY", sum.Total, sum.Failed, sum.Warnings))
	for _, msg := range sum.ErrorMessages() {
		c.PrintBullet("ERR{%s}", locale.Get("MASS_FAILURE", sum.Errors[msg], msg))
	}
	c.rule()
}

// Messages renders the run's message log pane
func (c *Console) Messages(run *state.Run) {
	if len(run.Messages) == 0 {
		return
	}
	c.PrintPane("Messages")
	for _, msg := range run.Messages {
		fmt.Fprintf(c.out, "  %s\n", FormatString(msg))
	}
	c.rule()
}

// StripMarkup removes markup, keeping the operands
func StripMarkup(s string) string {
	return regexpStringFunctions.ReplaceAllString(s, "$2")
}
