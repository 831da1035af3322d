package ldtk

import (
	"encoding/json"
	"fmt"
)

// Extension is the file extension of an LDtk project file.
const Extension = "ldtk"

// Document is a parsed LDtk project file.
type Document struct {
	Iid             string      `json:"iid"`
	JSONVersion     string      `json:"jsonVersion"`
	BgColor         string      `json:"bgColor"`
	ExternalLevels  bool        `json:"externalLevels"`
	WorldLayout     *string     `json:"worldLayout"`
	WorldGridWidth  *int        `json:"worldGridWidth"`
	WorldGridHeight *int        `json:"worldGridHeight"`
	DefaultGridSize int         `json:"defaultGridSize"`
	Defs            Definitions `json:"defs"`
	// Levels is empty when the project uses multiple worlds.
	Levels []Level `json:"levels"`
	Worlds []World `json:"worlds"`
}

type Definitions struct {
	Tilesets    []TilesetDefinition `json:"tilesets"`
	Layers      []LayerDefinition   `json:"layers"`
	Entities    []EntityDefinition  `json:"entities"`
	Enums       []EnumDefinition    `json:"enums"`
	LevelFields []FieldDefinition   `json:"levelFields"`
}

// TilesetDefinition describes an image sliced into a grid of tiles.
type TilesetDefinition struct {
	UID          int      `json:"uid"`
	Identifier   string   `json:"identifier"`
	RelPath      *string  `json:"relPath"`
	EmbedAtlas   *string  `json:"embedAtlas"`
	PxWid        int      `json:"pxWid"`
	PxHei        int      `json:"pxHei"`
	TileGridSize int      `json:"tileGridSize"`
	Spacing      int      `json:"spacing"`
	Padding      int      `json:"padding"`
	CWid         int      `json:"__cWid"`
	CHei         int      `json:"__cHei"`
	Tags         []string `json:"tags"`
}

type LayerType string

const (
	LayerTypeIntGrid   LayerType = "IntGrid"
	LayerTypeEntities  LayerType = "Entities"
	LayerTypeTiles     LayerType = "Tiles"
	LayerTypeAutoLayer LayerType = "AutoLayer"
)

type LayerDefinition struct {
	UID            int                      `json:"uid"`
	Identifier     string                   `json:"identifier"`
	Type           LayerType                `json:"__type"`
	GridSize       int                      `json:"gridSize"`
	DisplayOpacity float64                  `json:"displayOpacity"`
	PxOffsetX      int                      `json:"pxOffsetX"`
	PxOffsetY      int                      `json:"pxOffsetY"`
	IntGridValues  []IntGridValueDefinition `json:"intGridValues"`
	TilesetDefUID  *int                     `json:"tilesetDefUid"`
}

type IntGridValueDefinition struct {
	Value      int     `json:"value"`
	Identifier *string `json:"identifier"`
	// Color is a "#rrggbb" hex string.
	Color string `json:"color"`
}

type EntityDefinition struct {
	UID        int               `json:"uid"`
	Identifier string            `json:"identifier"`
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	Color      string            `json:"color"`
	PivotX     float64           `json:"pivotX"`
	PivotY     float64           `json:"pivotY"`
	TilesetID  *int              `json:"tilesetId"`
	TileRect   *TilesetRectangle `json:"tileRect"`
	Tags       []string          `json:"tags"`
}

type EnumDefinition struct {
	UID            int         `json:"uid"`
	Identifier     string      `json:"identifier"`
	Values         []EnumValue `json:"values"`
	IconTilesetUID *int        `json:"iconTilesetUid"`
}

type EnumValue struct {
	ID       string            `json:"id"`
	Color    int               `json:"color"`
	TileRect *TilesetRectangle `json:"tileRect"`
}

type FieldDefinition struct {
	UID        int    `json:"uid"`
	Identifier string `json:"identifier"`
	Type       string `json:"__type"`
	IsArray    bool   `json:"isArray"`
	CanBeNull  bool   `json:"canBeNull"`
}

type World struct {
	Iid             string  `json:"iid"`
	Identifier      string  `json:"identifier"`
	WorldLayout     *string `json:"worldLayout"`
	WorldGridWidth  int     `json:"worldGridWidth"`
	WorldGridHeight int     `json:"worldGridHeight"`
	Levels          []Level `json:"levels"`
}

// Level is a raw level as stored in the project file. When the project
// stores levels externally, LayerInstances is nil and ExternalRelPath points
// at the level's own file.
type Level struct {
	Iid             string           `json:"iid"`
	UID             int              `json:"uid"`
	Identifier      string           `json:"identifier"`
	WorldX          int              `json:"worldX"`
	WorldY          int              `json:"worldY"`
	WorldDepth      int              `json:"worldDepth"`
	PxWid           int              `json:"pxWid"`
	PxHei           int              `json:"pxHei"`
	BgColor         string           `json:"__bgColor"`
	BgRelPath       *string          `json:"bgRelPath"`
	BgPos           *LevelBgPos      `json:"__bgPos"`
	ExternalRelPath *string          `json:"externalRelPath"`
	FieldInstances  []FieldInstance  `json:"fieldInstances"`
	LayerInstances  *[]LayerInstance `json:"layerInstances"`
	Neighbours      []Neighbour      `json:"__neighbours"`
}

type LevelBgPos struct {
	CropRect  [4]float64 `json:"cropRect"`
	Scale     [2]float64 `json:"scale"`
	TopLeftPx [2]int     `json:"topLeftPx"`
}

type Neighbour struct {
	LevelIid string `json:"levelIid"`
	Dir      string `json:"dir"`
}

type LayerInstance struct {
	Iid               string           `json:"iid"`
	Identifier        string           `json:"__identifier"`
	Type              LayerType        `json:"__type"`
	CWid              int              `json:"__cWid"`
	CHei              int              `json:"__cHei"`
	GridSize          int              `json:"__gridSize"`
	Opacity           float64          `json:"__opacity"`
	PxTotalOffsetX    int              `json:"__pxTotalOffsetX"`
	PxTotalOffsetY    int              `json:"__pxTotalOffsetY"`
	TilesetDefUID     *int             `json:"__tilesetDefUid"`
	TilesetRelPath    *string          `json:"__tilesetRelPath"`
	LevelID           int              `json:"levelId"`
	LayerDefUID       int              `json:"layerDefUid"`
	Visible           bool             `json:"visible"`
	IntGridCsv        []int            `json:"intGridCsv"`
	GridTiles         []TileInstance   `json:"gridTiles"`
	AutoLayerTiles    []TileInstance   `json:"autoLayerTiles"`
	EntityInstances   []EntityInstance `json:"entityInstances"`
	OverrideTilesetID *int             `json:"overrideTilesetUid"`
}

type TileInstance struct {
	Px  [2]int  `json:"px"`
	Src [2]int  `json:"src"`
	F   int     `json:"f"`
	T   int     `json:"t"`
	A   float64 `json:"a"`
}

type EntityInstance struct {
	Iid            string            `json:"iid"`
	Identifier     string            `json:"__identifier"`
	Grid           [2]int            `json:"__grid"`
	Pivot          [2]float64        `json:"__pivot"`
	Tags           []string          `json:"__tags"`
	Tile           *TilesetRectangle `json:"__tile"`
	SmartColor     string            `json:"__smartColor"`
	DefUID         int               `json:"defUid"`
	Px             [2]int            `json:"px"`
	Width          int               `json:"width"`
	Height         int               `json:"height"`
	WorldX         *int              `json:"__worldX"`
	WorldY         *int              `json:"__worldY"`
	FieldInstances []FieldInstance   `json:"fieldInstances"`
}

type FieldInstance struct {
	Identifier string          `json:"__identifier"`
	Type       string          `json:"__type"`
	Value      json.RawMessage `json:"__value"`
	DefUID     int             `json:"defUid"`
}

type TilesetRectangle struct {
	TilesetUID int `json:"tilesetUid"`
	X          int `json:"x"`
	Y          int `json:"y"`
	W          int `json:"w"`
	H          int `json:"h"`
}

// ParseDocument decodes an LDtk project file.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ldtk: unmarshal project: %w", err)
	}
	return &doc, nil
}

// RawWorlds implements RawLevelAccessor.
func (d *Document) RawWorlds() []World {
	return d.Worlds
}

// RootLevels implements RawLevelAccessor.
func (d *Document) RootLevels() []Level {
	return d.Levels
}
