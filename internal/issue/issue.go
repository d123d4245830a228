// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

const (
	ConfigLoadFailedId Id = iota + 1
	RegistryAccessFailedId
	ServiceNotFoundId
	FilesystemAccessId
	ClassResolutionFailedId
	OutputWriteFailedId
	ManifestInvalidId
)

type (
	// Id identifies a catalogued issue.
	Id int

	MarkdownMsg string

	HttpLink string

	// Issue is a failure class with remediation guidance rendered as Markdown.
	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		extLinks []HttpLink  // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Render renders the issue with the glamour style at stylePath ("dark",
// "light", "notty" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.extLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range i.extLinks {
			md += "- <" + string(link) + ">\n"
		}
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Configuration could not be loaded

The configuration file exists but is not valid CUE, or it does not match the
configuration schema.

## Things you can try:
- Show the effective configuration and where it was loaded from:
~~~
$ topomap config show
$ topomap config path
~~~
- Write a fresh default file and compare:
~~~
$ topomap config init --force --path /tmp/topomap.cue
~~~
- Environment variables use the TOPOMAP_ prefix, e.g. ` + "`TOPOMAP_ROOT`" + `.`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	registryAccessFailedIssue = &Issue{
		id: RegistryAccessFailedId,
		mdMsg: `
# Channel registry not accessible

The naming class that declares the Kafka topic names was not found under the
source root, so no channels are known and nothing can be analysed.

## Things you can try:
- Check that ` + "`--root`" + ` points at the directory that holds every service checkout.
- Set the qualified naming class if your project does not use the default:
~~~cue
registry: class: "com.example.kafka.TopicNames"
~~~
- Or list the channels explicitly:
~~~cue
registry: {
	source: "list"
	list: ["orders-created", "orders-shipped"]
}
~~~`,
	}

	serviceNotFoundIssue = &Issue{
		id: ServiceNotFoundId,
		mdMsg: `
# Service not found

No directory directly under the source root matches the service name. Matching
replaces dashes with spaces and ignores case, so ` + "`device registration`" + ` matches
` + "`service-device-registration`" + `.

## Things you can try:
- List the directories under the root and compare the names.
- Remove services that are not checked out, or run without ` + "`--strict`" + ` to skip them.`,
	}

	filesystemAccessIssue = &Issue{
		id: FilesystemAccessId,
		mdMsg: `
# Directory cannot be listed

A service or source directory exists but could not be read.

## Things you can try:
- Check permissions on the reported path.
- Run without ` + "`--strict`" + ` to skip the affected service and analyse the rest.`,
	}

	classResolutionFailedIssue = &Issue{
		id: ClassResolutionFailedId,
		mdMsg: `
# Class hierarchy could not be resolved

A class under a kafka package was not found in the source index, or its
superclass chain loops.

## Things you can try:
- Make sure the file name matches the top-level type it declares.
- Run with ` + "`--verbose`" + ` to see which files failed to parse.
- Run without ` + "`--strict`" + ` to skip the class.`,
	}

	outputWriteFailedIssue = &Issue{
		id: OutputWriteFailedId,
		mdMsg: `
# Output could not be written

The analysis finished but the graph file could not be written.

## Things you can try:
- Check that the output directory exists and is writable.
- Write to standard output instead:
~~~
$ topomap analyze --output -
~~~`,
		extLinks: []HttpLink{"https://graphviz.org/doc/info/lang.html"},
	}

	manifestInvalidIssue = &Issue{
		id: ManifestInvalidId,
		mdMsg: `
# Manifest is invalid

The capability manifest does not match the manifest schema or uses an
unsupported version.

## Things you can try:
- Validate it and read the reported fields:
~~~
$ topomap manifest validate topology.cue
~~~
- Regenerate it from the sources:
~~~
$ topomap manifest generate --output topology.cue
~~~`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		registryAccessFailedIssue.Id():  registryAccessFailedIssue,
		serviceNotFoundIssue.Id():       serviceNotFoundIssue,
		filesystemAccessIssue.Id():      filesystemAccessIssue,
		classResolutionFailedIssue.Id(): classResolutionFailedIssue,
		outputWriteFailedIssue.Id():     outputWriteFailedIssue,
		manifestInvalidIssue.Id():       manifestInvalidIssue,
	}
)

// Values returns every issue ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
