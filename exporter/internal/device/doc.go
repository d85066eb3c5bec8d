// Package device holds the registry of smart plugs the exporter polls.
// Registration order is preserved and drives the order of the rendered
// output. The registry never resolves names over the network: a device
// without an alias is labelled with its address verbatim.
package device
