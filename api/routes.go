package api

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"
	// ElectionsEndpoint is the endpoint for creating and listing elections
	ElectionsEndpoint = "/elections"
	// ElectionURLParam is the URL parameter carrying the election ID
	ElectionURLParam = "electionId"
	// ElectionEndpoint is the endpoint to get one election
	ElectionEndpoint = "/elections/{" + ElectionURLParam + "}"
	// ElectionStatusEndpoint advances the election lifecycle
	ElectionStatusEndpoint = ElectionEndpoint + "/status"
	// AuthorityKeyEndpoint serves the credential verification key
	AuthorityKeyEndpoint = ElectionEndpoint + "/key"
	// CredentialsEndpoint signs blinded credential requests
	CredentialsEndpoint = ElectionEndpoint + "/credentials"
	// TrusteesEndpoint registers and lists ceremony trustees
	TrusteesEndpoint = ElectionEndpoint + "/trustees"
	// CommitmentsEndpoint receives Feldman commitment vectors
	CommitmentsEndpoint = ElectionEndpoint + "/commitments"
	// CeremonyEndpoint serves the ceremony status
	CeremonyEndpoint = ElectionEndpoint + "/ceremony"
	// VotesEndpoint is the endpoint for submitting a vote
	VotesEndpoint = ElectionEndpoint + "/votes"
	// LedgerRootEndpoint serves the current accumulator root
	LedgerRootEndpoint = ElectionEndpoint + "/root"
	// PositionURLParam is the URL parameter carrying a ledger position
	PositionURLParam = "position"
	// LedgerProofEndpoint serves the inclusion proof of a recorded vote
	LedgerProofEndpoint = VotesEndpoint + "/{" + PositionURLParam + "}/proof"
	// SnapshotEndpoint captures a ledger snapshot for anchoring
	SnapshotEndpoint = ElectionEndpoint + "/snapshot"
)
