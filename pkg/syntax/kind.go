package syntax

import (
	"encoding/json"
	"strings"
)

// Kind classifies the type of a syntax node.
//
// The names returned by String are the exact tags emitted by the AL
// language service. A tag missing from this catalog decodes to KindUnknown,
// so the catalog must track the service's schema version.
type Kind uint16

// Node kinds for AL syntax constructs.
const (
	// KindNone is the zero value, used by the synthetic root.
	KindNone Kind = iota

	// KindUnknown is a tag the catalog does not recognise.
	KindUnknown

	KindCompilationUnit

	// Object declarations.
	KindCodeunitObject
	KindTableObject
	KindTableExtensionObject
	KindPageObject
	KindPageExtensionObject
	KindPageCustomizationObject
	KindReportObject
	KindReportExtensionObject
	KindRequestPage
	KindXmlPortObject
	KindQueryObject
	KindEnumType
	KindEnumExtensionType
	KindInterface
	KindControlAddInObject
	KindPermissionSet
	KindPermissionSetExtension
	KindProfileObject

	// Object members and references.
	KindObjectID
	KindObjectReference
	KindIdentifierName
	KindQualifiedName
	KindPropertyList
	KindProperty
	KindPropertyName
	KindObjectReferencePropertyValue
	KindIdentifierPropertyValue
	KindBooleanPropertyValue
	KindStringPropertyValue
	KindInt32PropertyValue
	KindFieldList
	KindField
	KindFieldExtensionList
	KindFieldModification
	KindKeyList
	KindKey
	KindPageLayout
	KindPageArea
	KindPageGroup
	KindPageField
	KindPageActionList
	KindPageAction
	KindEnumValue
	KindMemberAttribute

	// Declarations.
	KindMethodDeclaration
	KindTriggerDeclaration
	KindEventDeclaration
	KindParameterList
	KindParameter
	KindReturnValue
	KindVarSection
	KindGlobalVarSection
	KindVariableDeclaration
	KindVariableListDeclaration
	KindVariableDeclarationName
	KindSimpleTypeReference
	KindRecordTypeReference
	KindSubtypedDataType
	KindLabelDataType

	// Statements.
	KindBlock
	KindIfStatement
	KindElseClause
	KindCaseStatement
	KindCaseLine
	KindCaseElse
	KindForStatement
	KindForEachStatement
	KindWhileStatement
	KindRepeatStatement
	KindWithStatement
	KindExitStatement
	KindExpressionStatement
	KindAssignmentStatement
	KindCompoundAssignmentStatement
	KindEmptyStatement

	// Expressions.
	KindInvocationExpression
	KindMemberAccessExpression
	KindArgumentList
	KindLiteralExpression
	KindBooleanLiteralValue
	KindStringLiteralValue
	KindInt32SignedLiteralValue
	KindOptionAccessExpression
	KindArrayIndexExpression
	KindParenthesizedExpression
	KindUnaryNotExpression
	KindUnaryMinusExpression
	KindLogicalAndExpression
	KindLogicalOrExpression
	KindEqualsExpression
	KindNotEqualsExpression
	KindAddExpression
	KindSubtractExpression
	KindRangeExpression

	kindCount
)

//nolint:gochecknoglobals // Lookup tables for the closed kind catalog.
var (
	kindNames = [kindCount]string{
		KindNone:                         "",
		KindUnknown:                      "Unknown",
		KindCompilationUnit:              "CompilationUnit",
		KindCodeunitObject:               "CodeunitObject",
		KindTableObject:                  "TableObject",
		KindTableExtensionObject:         "TableExtensionObject",
		KindPageObject:                   "PageObject",
		KindPageExtensionObject:          "PageExtensionObject",
		KindPageCustomizationObject:      "PageCustomizationObject",
		KindReportObject:                 "ReportObject",
		KindReportExtensionObject:        "ReportExtensionObject",
		KindRequestPage:                  "RequestPage",
		KindXmlPortObject:                "XmlPortObject",
		KindQueryObject:                  "QueryObject",
		KindEnumType:                     "EnumType",
		KindEnumExtensionType:            "EnumExtensionType",
		KindInterface:                    "Interface",
		KindControlAddInObject:           "ControlAddInObject",
		KindPermissionSet:                "PermissionSet",
		KindPermissionSetExtension:       "PermissionSetExtension",
		KindProfileObject:                "ProfileObject",
		KindObjectID:                     "ObjectId",
		KindObjectReference:              "ObjectReference",
		KindIdentifierName:               "IdentifierName",
		KindQualifiedName:                "QualifiedName",
		KindPropertyList:                 "PropertyList",
		KindProperty:                     "Property",
		KindPropertyName:                 "PropertyName",
		KindObjectReferencePropertyValue: "ObjectReferencePropertyValue",
		KindIdentifierPropertyValue:      "IdentifierPropertyValue",
		KindBooleanPropertyValue:         "BooleanPropertyValue",
		KindStringPropertyValue:          "StringPropertyValue",
		KindInt32PropertyValue:           "Int32SignedPropertyValue",
		KindFieldList:                    "FieldList",
		KindField:                        "Field",
		KindFieldExtensionList:           "FieldExtensionList",
		KindFieldModification:            "FieldModification",
		KindKeyList:                      "KeyList",
		KindKey:                          "Key",
		KindPageLayout:                   "PageLayout",
		KindPageArea:                     "PageArea",
		KindPageGroup:                    "PageGroup",
		KindPageField:                    "PageField",
		KindPageActionList:               "PageActionList",
		KindPageAction:                   "PageAction",
		KindEnumValue:                    "EnumValue",
		KindMemberAttribute:              "MemberAttribute",
		KindMethodDeclaration:            "MethodDeclaration",
		KindTriggerDeclaration:           "TriggerDeclaration",
		KindEventDeclaration:             "EventDeclaration",
		KindParameterList:                "ParameterList",
		KindParameter:                    "Parameter",
		KindReturnValue:                  "ReturnValue",
		KindVarSection:                   "VarSection",
		KindGlobalVarSection:             "GlobalVarSection",
		KindVariableDeclaration:          "VariableDeclaration",
		KindVariableListDeclaration:      "VariableListDeclaration",
		KindVariableDeclarationName:      "VariableDeclarationName",
		KindSimpleTypeReference:          "SimpleTypeReference",
		KindRecordTypeReference:          "RecordTypeReference",
		KindSubtypedDataType:             "SubtypedDataType",
		KindLabelDataType:                "LabelDataType",
		KindBlock:                        "Block",
		KindIfStatement:                  "IfStatement",
		KindElseClause:                   "ElseClause",
		KindCaseStatement:                "CaseStatement",
		KindCaseLine:                     "CaseLine",
		KindCaseElse:                     "CaseElse",
		KindForStatement:                 "ForStatement",
		KindForEachStatement:             "ForEachStatement",
		KindWhileStatement:               "WhileStatement",
		KindRepeatStatement:              "RepeatStatement",
		KindWithStatement:                "WithStatement",
		KindExitStatement:                "ExitStatement",
		KindExpressionStatement:          "ExpressionStatement",
		KindAssignmentStatement:          "AssignmentStatement",
		KindCompoundAssignmentStatement:  "CompoundAssignmentStatement",
		KindEmptyStatement:               "EmptyStatement",
		KindInvocationExpression:         "InvocationExpression",
		KindMemberAccessExpression:       "MemberAccessExpression",
		KindArgumentList:                 "ArgumentList",
		KindLiteralExpression:            "LiteralExpression",
		KindBooleanLiteralValue:          "BooleanLiteralValue",
		KindStringLiteralValue:           "StringLiteralValue",
		KindInt32SignedLiteralValue:      "Int32SignedLiteralValue",
		KindOptionAccessExpression:       "OptionAccessExpression",
		KindArrayIndexExpression:         "ArrayIndexExpression",
		KindParenthesizedExpression:      "ParenthesizedExpression",
		KindUnaryNotExpression:           "UnaryNotExpression",
		KindUnaryMinusExpression:         "UnaryMinusExpression",
		KindLogicalAndExpression:         "LogicalAndExpression",
		KindLogicalOrExpression:          "LogicalOrExpression",
		KindEqualsExpression:             "EqualsExpression",
		KindNotEqualsExpression:          "NotEqualsExpression",
		KindAddExpression:                "AddExpression",
		KindSubtractExpression:           "SubtractExpression",
		KindRangeExpression:              "RangeExpression",
	}

	kindsByName = func() map[string]Kind {
		byName := make(map[string]Kind, kindCount)
		for kind, name := range kindNames {
			if name != "" {
				byName[name] = Kind(kind)
			}
		}
		return byName
	}()
)

// String returns the wire tag for the kind.
func (k Kind) String() string {
	if k >= kindCount {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// ParseKind maps a wire tag to its Kind.
// The empty tag is KindNone; any other unrecognised tag is KindUnknown.
func ParseKind(name string) Kind {
	if name == "" {
		return KindNone
	}
	if kind, ok := kindsByName[name]; ok {
		return kind
	}
	return KindUnknown
}

// LookupKind maps a kind name, compared case-insensitively, to its Kind.
// KindNone and KindUnknown are never found.
func LookupKind(name string) (Kind, bool) {
	kind, ok := kindsByName[name]
	if !ok {
		for idx, tag := range kindNames {
			if tag != "" && strings.EqualFold(tag, name) {
				kind, ok = Kind(idx), true
				break
			}
		}
	}
	if !ok || kind == KindUnknown {
		return KindUnknown, false
	}
	return kind, true
}

// MarshalJSON encodes the kind as its wire tag.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a wire tag.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err //nolint:wrapcheck // Decoder errors already carry context.
	}
	*k = ParseKind(name)
	return nil
}

// IsObject returns true for top-level AL object declarations.
func (k Kind) IsObject() bool {
	return k >= KindCodeunitObject && k <= KindProfileObject
}

// IsStatement returns true for statement kinds.
func (k Kind) IsStatement() bool {
	return k >= KindBlock && k <= KindEmptyStatement
}

// ObjectKinds returns every object declaration kind.
func ObjectKinds() []Kind {
	kinds := make([]Kind, 0, KindProfileObject-KindCodeunitObject+1)
	for k := KindCodeunitObject; k <= KindProfileObject; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}
