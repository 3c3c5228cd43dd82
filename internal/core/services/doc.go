// Package services implements the driving ports on top of the driven ones:
// ingestion, anonymization, search, documents and settings.
package services
