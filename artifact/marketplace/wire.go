package marketplace

import (
	"github.com/reglet-dev/extcompat/artifact/entities"
	"github.com/reglet-dev/extcompat/artifact/values"
)

// Gallery query flags: include versions, files and version properties.
const (
	flagIncludeVersions          = 0x1
	flagIncludeFiles             = 0x2
	flagIncludeVersionProperties = 0x10

	queryFlags = flagIncludeVersions | flagIncludeFiles | flagIncludeVersionProperties

	filterExtensionName = 7
	pageSize            = 1000
)

// Well-known property keys and asset types.
const (
	PropertyPrerelease = "Microsoft.VisualStudio.Code.PreRelease"
	PropertyEngine     = "Microsoft.VisualStudio.Code.Engine"
	AssetVSIXPackage   = "Microsoft.VisualStudio.Services.VSIXPackage"
)

type queryRequest struct {
	Filters []queryFilter `json:"filters"`
	Flags   int           `json:"flags"`
}

type queryFilter struct {
	Criteria []queryCriterion `json:"criteria"`
	PageSize int              `json:"pageSize"`
}

type queryCriterion struct {
	Value      string `json:"value"`
	FilterType int    `json:"filterType"`
}

func newQueryRequest(id values.ArtifactID) queryRequest {
	return queryRequest{
		Filters: []queryFilter{{
			Criteria: []queryCriterion{{FilterType: filterExtensionName, Value: id.String()}},
			PageSize: pageSize,
		}},
		Flags: queryFlags,
	}
}

type queryResponse struct {
	Results []struct {
		Extensions []extension `json:"extensions"`
	} `json:"results"`
}

type extension struct {
	Publisher struct {
		PublisherName string `json:"publisherName"`
	} `json:"publisher"`
	ExtensionName string    `json:"extensionName"`
	DisplayName   string    `json:"displayName"`
	Versions      []version `json:"versions"`
}

type version struct {
	Version        string     `json:"version"`
	TargetPlatform string     `json:"targetPlatform,omitempty"`
	Properties     []property `json:"properties"`
	Files          []file     `json:"files"`
}

type property struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type file struct {
	AssetType string `json:"assetType"`
	Source    string `json:"source"`
}

func (v version) property(key string) string {
	for _, p := range v.Properties {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

func (v version) asset(assetType string) string {
	for _, f := range v.Files {
		if f.AssetType == assetType {
			return f.Source
		}
	}
	return ""
}

// toRecord maps a gallery version to a VersionRecord. Only the literal
// "true" marks a prerelease.
func (v version) toRecord() entities.VersionRecord {
	return entities.VersionRecord{
		Version:           v.Version,
		Prerelease:        v.property(PropertyPrerelease) == "true",
		EngineRequirement: v.property(PropertyEngine),
		PackageURL:        v.asset(AssetVSIXPackage),
	}
}

func (e extension) toEntry(id values.ArtifactID) *entities.CatalogEntry {
	entry := &entities.CatalogEntry{
		ID:          id,
		DisplayName: e.DisplayName,
		Versions:    make([]entities.VersionRecord, 0, len(e.Versions)),
	}
	for _, v := range e.Versions {
		entry.Versions = append(entry.Versions, v.toRecord())
	}
	return entry
}
