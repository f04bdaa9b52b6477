package types

// Shape names a response representation.
type Shape int

const (
	ShapeDetail Shape = iota
	ShapeShort
	ShapeSubscription
	ShapeUser
)

func (s Shape) String() string {
	switch s {
	case ShapeDetail:
		return "detail"
	case ShapeShort:
		return "short"
	case ShapeSubscription:
		return "subscription"
	case ShapeUser:
		return "user"
	default:
		return "unknown"
	}
}

const (
	ResourceRecipe       = "recipe"
	ResourceFavorite     = "favorite"
	ResourceShoppingCart = "shopping_cart"
	ResourceUser         = "user"
	ResourceSubscription = "subscription"
)

const (
	ActionList     = "list"
	ActionRetrieve = "retrieve"
	ActionCreate   = "create"
	ActionUpdate   = "update"
)

// Operation identifies what a request does to which resource.
type Operation struct {
	Resource string
	Action   string
}

var shapes = map[Operation]Shape{
	{ResourceRecipe, ActionList}:         ShapeDetail,
	{ResourceRecipe, ActionRetrieve}:     ShapeDetail,
	{ResourceRecipe, ActionCreate}:       ShapeDetail,
	{ResourceRecipe, ActionUpdate}:       ShapeDetail,
	{ResourceFavorite, ActionCreate}:     ShapeShort,
	{ResourceShoppingCart, ActionCreate}: ShapeShort,
	{ResourceSubscription, ActionCreate}: ShapeSubscription,
	{ResourceSubscription, ActionList}:   ShapeSubscription,
	{ResourceUser, ActionList}:           ShapeUser,
	{ResourceUser, ActionRetrieve}:       ShapeUser,
	{ResourceUser, ActionCreate}:         ShapeUser,
}

// ShapeFor returns the response shape of an operation.
// Unknown operations render the full detail shape.
func ShapeFor(op Operation) Shape {
	if s, ok := shapes[op]; ok {
		return s
	}
	return ShapeDetail
}
