package schema

import "strings"

// seedBuiltins registers the RFC 4517 syntaxes and RFC 4512/4517
// matching rules every LDAP deployment carries, plus the handful of
// attribute types and object classes (RFC 4519/4512) needed to resolve
// a typical directory without a schema probe. The matching-rule set
// mirrors the teacher's hardcoded registry (internal/domain/matchingRule.go),
// carried forward with real Prep pipelines instead of stubs.
func seedBuiltins(r *Registry) {
	for _, s := range builtinSyntaxes {
		r.RegisterSyntax(s)
	}
	for _, m := range builtinMatchingRules {
		r.RegisterMatchingRule(m)
	}
	for _, def := range builtinAttributeTypes {
		at, err := ParseAttributeType(def)
		if err != nil {
			logger.Printf("seedBuiltins: bad built-in attribute type %q: %v", def, err)
			continue
		}
		if err := r.RegisterAttributeType(at); err != nil {
			logger.Printf("seedBuiltins: %v", err)
		}
	}
	for _, def := range builtinObjectClasses {
		oc, err := ParseObjectClass(def)
		if err != nil {
			logger.Printf("seedBuiltins: bad built-in object class %q: %v", def, err)
			continue
		}
		if err := r.RegisterObjectClass(oc); err != nil {
			logger.Printf("seedBuiltins: %v", err)
		}
	}
}

var builtinSyntaxes = []SyntaxRule{
	{OID: "1.3.6.1.4.1.1466.115.121.1.15", Desc: "Directory String"},
	{OID: "1.3.6.1.4.1.1466.115.121.1.12", Desc: "DN"},
	{OID: "1.3.6.1.4.1.1466.115.121.1.26", Desc: "IA5 String"},
	{OID: "1.3.6.1.4.1.1466.115.121.1.27", Desc: "Integer"},
	{OID: "1.3.6.1.4.1.1466.115.121.1.36", Desc: "Numeric String"},
	{OID: "1.3.6.1.4.1.1466.115.121.1.38", Desc: "OID"},
	{OID: "1.3.6.1.4.1.1466.115.121.1.40", Desc: "Octet String"},
	{OID: "1.3.6.1.4.1.1466.115.121.1.7", Desc: "Boolean"},
}

func octetEqual(a, b string) (bool, error) { return a == b, nil }

var builtinMatchingRules = []MatchingRule{
	{
		OID: "2.5.13.2", Name: "caseIgnoreMatch", Syntax: "1.3.6.1.4.1.1466.115.121.1.15",
		Prep: CaseIgnorePipeline,
	},
	{
		OID: "2.5.13.5", Name: "caseExactMatch", Syntax: "1.3.6.1.4.1.1466.115.121.1.15",
		Prep: CaseExactPipeline,
	},
	{
		OID: "1.3.6.1.4.1.1466.109.114.2", Name: "caseIgnoreIA5Match", Syntax: "1.3.6.1.4.1.1466.115.121.1.26",
		Prep: CaseIgnorePipeline,
	},
	{
		OID: "2.5.13.1", Name: "distinguishedNameMatch", Syntax: "1.3.6.1.4.1.1466.115.121.1.12",
		Prep: CaseIgnorePipeline,
	},
	{
		OID: "2.5.13.8", Name: "numericStringMatch", Syntax: "1.3.6.1.4.1.1466.115.121.1.36",
		Prep: NumericStringPipeline,
	},
	{
		OID: "2.5.13.17", Name: "octetStringMatch", Syntax: "1.3.6.1.4.1.1466.115.121.1.40",
		Prep: OctetStringPipeline, Match: octetEqual,
	},
	{
		OID: "2.5.13.16", Name: "bitStringMatch", Syntax: "1.3.6.1.4.1.1466.115.121.1.6",
		Prep: OctetStringPipeline, Match: octetEqual,
	},
	{
		OID: "2.5.13.13", Name: "booleanMatch", Syntax: "1.3.6.1.4.1.1466.115.121.1.7",
		Prep: OctetStringPipeline, Match: octetEqual,
	},
	{
		OID: "2.5.13.3", Name: "caseIgnoreOrderingMatch", Syntax: "1.3.6.1.4.1.1466.115.121.1.15",
		Prep: CaseIgnorePipeline, Order: lexicalOrder,
	},
}

func lexicalOrder(a, b string) (int, error) { return strings.Compare(a, b), nil }

// builtinAttributeTypes covers the RFC 4519 core attribute set needed
// to exercise C4/C5/C8 without a live root-DSE schema probe.
var builtinAttributeTypes = []string{
	`( 2.5.4.0 NAME 'objectClass' EQUALITY objectIdentifierMatch SYNTAX 1.3.6.1.4.1.1466.115.121.1.38 )`,
	`( 2.5.4.3 NAME 'cn' SUP name )`,
	`( 2.5.4.41 NAME 'name' EQUALITY caseIgnoreMatch SUBSTR caseIgnoreSubstringsMatch SYNTAX 1.3.6.1.4.1.1466.115.121.1.15{32768} )`,
	`( 0.9.2342.19200300.100.1.1 NAME 'uid' EQUALITY caseIgnoreMatch SUBSTR caseIgnoreSubstringsMatch SYNTAX 1.3.6.1.4.1.1466.115.121.1.15{256} )`,
	`( 2.5.4.11 NAME 'ou' SUP name )`,
	`( 0.9.2342.19200300.100.1.25 NAME 'dc' EQUALITY caseIgnoreIA5Match SUBSTR caseIgnoreIA5SubstringsMatch SYNTAX 1.3.6.1.4.1.1466.115.121.1.26{128} SINGLE-VALUE )`,
	`( 2.5.4.13 NAME 'description' EQUALITY caseIgnoreMatch SUBSTR caseIgnoreSubstringsMatch SYNTAX 1.3.6.1.4.1.1466.115.121.1.15{1024} )`,
	`( 1.3.6.1.1.1.1.0 NAME 'uidNumber' EQUALITY integerMatch SYNTAX 1.3.6.1.4.1.1466.115.121.1.27 SINGLE-VALUE )`,
	`( 1.3.6.1.1.1.1.1 NAME 'gidNumber' EQUALITY integerMatch SYNTAX 1.3.6.1.4.1.1466.115.121.1.27 SINGLE-VALUE )`,
	`( 1.3.6.1.1.1.1.12 NAME 'memberUid' EQUALITY caseExactIA5Match SUBSTR caseExactIA5SubstringsMatch SYNTAX 1.3.6.1.4.1.1466.115.121.1.26{256} )`,
	`( 2.5.4.35 NAME 'userPassword' EQUALITY octetStringMatch SYNTAX 1.3.6.1.4.1.1466.115.121.1.40{128} )`,
	`( 2.5.4.49 NAME 'distinguishedName' EQUALITY distinguishedNameMatch SYNTAX 1.3.6.1.4.1.1466.115.121.1.12 )`,
}

var builtinObjectClasses = []string{
	`( 2.5.6.0 NAME 'top' ABSTRACT MUST objectClass )`,
	`( 2.5.6.6 NAME 'person' SUP top STRUCTURAL MUST ( sn $ cn ) MAY ( userPassword $ description ) )`,
	`( 1.3.6.1.1.1.2.0 NAME 'posixAccount' SUP top AUXILIARY MUST ( cn $ uid $ uidNumber $ gidNumber $ homeDirectory ) MAY ( userPassword $ description ) )`,
	`( 1.3.6.1.1.1.2.2 NAME 'posixGroup' SUP top STRUCTURAL MUST ( cn $ gidNumber ) MAY ( userPassword $ memberUid $ description ) )`,
	`( 1.3.6.1.4.1.1466.344 NAME 'dcObject' SUP top AUXILIARY MUST dc )`,
	`( 2.5.6.5 NAME 'organizationalUnit' SUP top STRUCTURAL MUST ou MAY description )`,
}
