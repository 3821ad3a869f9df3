// Package clients talks to the external collaborators of the pipeline:
// speech recognition backends, text sentiment services and the KoboToolbox
// asset API. Every call returns a *ServiceError on transport or HTTP failure.
package clients
