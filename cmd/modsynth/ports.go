package main

import (
	"fmt"
	"os"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/spf13/cobra"
	"github.com/vsariola/modsynth"
)

const defaultPortsTemplate = `{{- range . -}}
{{ printf "%-40s" .Specifier }} {{ printf "%10.3f" .Value }}  [{{ .Lower }}, {{ .Upper }}]
{{- with .Unit }} {{ . }}{{ end }}
{{- with .Flags }} ({{ join ", " . }}){{ end }}
{{ end -}}`

var (
	portsTemplate string
	portsYaml     bool
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List the ports and their current values",
	Long: `Ports lists the ports of the synth, after applying the preset if one is
given. The output is produced by a text/template with the sprig functions
available; the template is executed with a list of ports, each having the
fields Name, Specifier, Value, Default, Lower, Upper, Unit and Flags.

Example:
  modsynth ports --template '{{ range . }}{{ .Name | upper }}={{ .Value }}{{ "\n" }}{{ end }}'
`,
	Args: cobra.NoArgs,
	RunE: runPorts,
}

func init() {
	f := portsCmd.Flags()
	f.StringVarP(&portsTemplate, "template", "t", "", "Template for the output; a file name or the template itself.")
	f.BoolVar(&portsYaml, "yaml", false, "Output the port values as a preset.")
	rootCmd.AddCommand(portsCmd)
}

type portRow struct {
	Name, Specifier string
	Value, Default  float64
	Lower, Upper    float64
	Unit            string
	Flags           []string
}

func runPorts(c *cobra.Command, args []string) error {
	_, unit, err := newUnit(c)
	if err != nil {
		return err
	}
	defer unit.Close()
	ports := unit.Ports()
	if portsYaml {
		contents, err := ports.Preset().Marshal()
		if err != nil {
			return err
		}
		_, err = c.OutOrStdout().Write(contents)
		return err
	}
	tmpl, err := parsePortsTemplate(portsTemplate)
	if err != nil {
		return err
	}
	var rows []portRow
	for _, p := range ports.All() {
		rows = append(rows, newPortRow(p))
	}
	if err := tmpl.Execute(c.OutOrStdout(), rows); err != nil {
		return fmt.Errorf("could not execute the ports template: %w", err)
	}
	return nil
}

func parsePortsTemplate(s string) (*template.Template, error) {
	if s == "" {
		s = defaultPortsTemplate
	} else if data, err := os.ReadFile(s); err == nil {
		s = string(data)
	}
	tmpl, err := template.New("ports").Funcs(sprig.TxtFuncMap()).Parse(s)
	if err != nil {
		return nil, fmt.Errorf("could not parse the ports template: %w", err)
	}
	return tmpl, nil
}

func newPortRow(p *modsynth.Port) portRow {
	row := portRow{
		Name:      p.Name,
		Specifier: p.Specifier,
		Value:     p.Value(),
		Default:   p.Default,
		Lower:     p.Lower,
		Upper:     p.Upper,
		Unit:      p.Unit,
	}
	if p.Integer() {
		row.Flags = append(row.Flags, "integer")
	}
	if p.Logarithmic() {
		row.Flags = append(row.Flags, "logarithmic")
	}
	if p.Toggled() {
		row.Flags = append(row.Flags, "toggled")
	}
	return row
}
