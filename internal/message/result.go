package message

import "github.com/georgib0y/ldapcore/internal/ber"

// ResultCode is the LDAPResult enumeration. Codes this implementation
// does not name decode to their plain integer value verbatim: the type
// is just an int, so an unrecognised server code round-trips unchanged
// instead of being coerced into some Other() wrapper.
type ResultCode int64

const (
	Success                   ResultCode = 0
	OperationsError           ResultCode = 1
	ProtocolErrorCode         ResultCode = 2
	TimeLimitExceeded         ResultCode = 3
	SizeLimitExceeded         ResultCode = 4
	CompareFalse              ResultCode = 5
	CompareTrue               ResultCode = 6
	AuthMethodNotSupported    ResultCode = 7
	StrongerAuthRequired      ResultCode = 8
	Referral                  ResultCode = 10
	AdminLimitExceeded        ResultCode = 11
	UnavailableCriticalExt    ResultCode = 12
	ConfidentialityRequired   ResultCode = 13
	SaslBindInProgress        ResultCode = 14
	NoSuchAttribute           ResultCode = 16
	UndefinedAttributeType    ResultCode = 17
	InappropriateMatching     ResultCode = 18
	ConstraintViolation       ResultCode = 19
	AttributeOrValueExists    ResultCode = 20
	InvalidAttributeSyntax    ResultCode = 21
	NoSuchObject              ResultCode = 32
	AliasProblem              ResultCode = 33
	InvalidDNSyntax           ResultCode = 34
	AliasDerefProblem         ResultCode = 36
	InappropriateAuth         ResultCode = 48
	InvalidCredentials        ResultCode = 49
	InsufficientAccessRights  ResultCode = 50
	Busy                      ResultCode = 51
	Unavailable               ResultCode = 52
	UnwillingToPerform        ResultCode = 53
	LoopDetect                ResultCode = 54
	NamingViolation           ResultCode = 64
	ObjectClassViolation      ResultCode = 65
	NotAllowedOnNonLeaf       ResultCode = 66
	NotAllowedOnRDN           ResultCode = 67
	EntryAlreadyExists        ResultCode = 68
	ObjectClassModsProhibited ResultCode = 69
	AffectsMultipleDSAs       ResultCode = 71
	Other                     ResultCode = 80
)

var resultCodeNames = map[ResultCode]string{
	Success:                   "success",
	OperationsError:           "operationsError",
	ProtocolErrorCode:         "protocolError",
	TimeLimitExceeded:         "timeLimitExceeded",
	SizeLimitExceeded:         "sizeLimitExceeded",
	CompareFalse:              "compareFalse",
	CompareTrue:               "compareTrue",
	AuthMethodNotSupported:    "authMethodNotSupported",
	StrongerAuthRequired:      "strongerAuthRequired",
	Referral:                  "referral",
	AdminLimitExceeded:        "adminLimitExceeded",
	UnavailableCriticalExt:    "unavailableCriticalExtension",
	ConfidentialityRequired:   "confidentialityRequired",
	SaslBindInProgress:        "saslBindInProgress",
	NoSuchAttribute:           "noSuchAttribute",
	UndefinedAttributeType:    "undefinedAttributeType",
	InappropriateMatching:     "inappropriateMatching",
	ConstraintViolation:       "constraintViolation",
	AttributeOrValueExists:    "attributeOrValueExists",
	InvalidAttributeSyntax:    "invalidAttributeSyntax",
	NoSuchObject:              "noSuchObject",
	AliasProblem:              "aliasProblem",
	InvalidDNSyntax:           "invalidDNSyntax",
	AliasDerefProblem:         "aliasDereferencingProblem",
	InappropriateAuth:         "inappropriateAuthentication",
	InvalidCredentials:        "invalidCredentials",
	InsufficientAccessRights:  "insufficientAccessRights",
	Busy:                      "busy",
	Unavailable:               "unavailable",
	UnwillingToPerform:        "unwillingToPerform",
	LoopDetect:                "loopDetect",
	NamingViolation:           "namingViolation",
	ObjectClassViolation:      "objectClassViolation",
	NotAllowedOnNonLeaf:       "notAllowedOnNonLeaf",
	NotAllowedOnRDN:           "notAllowedOnRDN",
	EntryAlreadyExists:        "entryAlreadyExists",
	ObjectClassModsProhibited: "objectClassModsProhibited",
	AffectsMultipleDSAs:       "affectsMultipleDSAs",
	Other:                     "other",
}

func (c ResultCode) String() string {
	if s, ok := resultCodeNames[c]; ok {
		return s
	}
	return "unknown"
}

// Result is the common LDAPResult structure shared by every response op.
type Result struct {
	Code              ResultCode
	MatchedDN         string
	DiagnosticMessage string
	Referral          []string
}

func (r Result) encodeInto(p *ber.Packet) {
	p.AppendChild(ber.NewInteger(ber.TagEnumeratedPrimitive, int64(r.Code), "resultCode"))
	p.AppendChild(ber.NewString(ber.TagOctetStringPrimitive, r.MatchedDN, "matchedDN"))
	p.AppendChild(ber.NewString(ber.TagOctetStringPrimitive, r.DiagnosticMessage, "diagnosticMessage"))
	if len(r.Referral) > 0 {
		ref := ber.NewConstructed(ber.ContextSpecific(3, true), "referral")
		for _, u := range r.Referral {
			ref.AppendChild(ber.NewString(ber.TagOctetStringPrimitive, u, "uri"))
		}
		p.AppendChild(ref)
	}
}

var referralTag = ber.ContextSpecific(3, true)

func decodeResult(p *ber.Packet) (Result, error) {
	if len(p.Children) < 3 {
		return Result{}, malformedOp(p, "LDAPResult", 3)
	}

	code, err := p.Children[0].Int()
	if err != nil {
		return Result{}, err
	}

	r := Result{
		Code:              ResultCode(code),
		MatchedDN:         p.Children[1].String(),
		DiagnosticMessage: p.Children[2].String(),
	}

	if len(p.Children) > 3 && p.Children[3].Tag.Equal(referralTag) {
		for _, u := range p.Children[3].Children {
			r.Referral = append(r.Referral, u.String())
		}
	}

	return r, nil
}
