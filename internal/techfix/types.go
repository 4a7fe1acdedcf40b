package techfix

import "strconv"

// Entities exchanged with the TechFix backend. Field names follow the wire
// format of the API (camelCase JSON, numeric enums); the backend owns the
// canonical shapes, this package only mirrors them.

// QuotationType discriminates an admin request-for-quotation from a
// supplier's priced response.
type QuotationType int

const (
	QuotationRequest QuotationType = 0
	QuotationQuote   QuotationType = 1
)

func (t QuotationType) String() string {
	switch t {
	case QuotationRequest:
		return "Request for Quotation"
	case QuotationQuote:
		return "Submitted Quote"
	}
	return "Unknown"
}

// RFQStatus is the lifecycle status of a quotation. Transitions are
// monotonic server-side: Pending -> Approved or Declined, never back.
type RFQStatus int

const (
	StatusPending  RFQStatus = 0
	StatusApproved RFQStatus = 1
	StatusDeclined RFQStatus = 2
)

func (s RFQStatus) String() string {
	switch s {
	case StatusApproved:
		return "Approved"
	case StatusDeclined:
		return "Declined"
	}
	return "Pending"
}

// ChangeReason tags an inventory change audit row.
type ChangeReason int

const (
	ReasonSupply   ChangeReason = 0
	ReasonPurchase ChangeReason = 1
)

func (r ChangeReason) String() string {
	if r == ReasonPurchase {
		return "Purchase"
	}
	return "Supply"
}

// Roles as the backend reports them on the user profile.
const (
	RoleAdmin    = "Admin"
	RoleSupplier = "Supplier"
)

// Numeric role code used by the register endpoint.
const registerRoleSupplier = 1

type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	CompanyName string `json:"companyName,omitempty"`
}

// IsAdmin reports whether the user may perform administrative actions.
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	// The backend serializes supplier ids on products as strings.
	SupplierID string `json:"supplierId"`
}

// SupplierIDInt parses the string supplier id; 0 when absent or malformed.
func (p Product) SupplierIDInt() int64 {
	id, err := strconv.ParseInt(p.SupplierID, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

type Inventory struct {
	ID        int64 `json:"id,omitempty"`
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// InventoryUpdate is one signed delta of a bulk update. Negative values
// decrement stock.
type InventoryUpdate struct {
	ProductID     int64 `json:"productId"`
	QuantityToAdd int   `json:"quantityToAdd"`
}

type InventoryChange struct {
	ID             int64        `json:"id"`
	ProductID      int64        `json:"productId"`
	QuantityChange int          `json:"quantityChange"`
	ChangeDate     string       `json:"changeDate"`
	Reason         ChangeReason `json:"reason"`
	PurchaseID     *int64       `json:"purchaseId,omitempty"`
}

type AddStockRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type Purchase struct {
	ID            int64          `json:"id"`
	UserID        int64          `json:"userId"`
	PurchaseDate  string         `json:"purchaseDate"`
	TotalAmount   float64        `json:"totalAmount"`
	PurchaseItems []PurchaseItem `json:"purchaseItems"`
}

type PurchaseItem struct {
	ID         int64   `json:"id"`
	PurchaseID int64   `json:"purchaseId"`
	ProductID  int64   `json:"productId"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

// PurchaseRequest creates a purchase server-side from a list of items.
type PurchaseRequest struct {
	UserID        int64                 `json:"userId"`
	PurchaseItems []PurchaseItemRequest `json:"purchaseItems"`
}

type PurchaseItemRequest struct {
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type Quotation struct {
	ID                int64              `json:"id"`
	AdminID           int64              `json:"adminId"`
	SupplierID        int64              `json:"supplierId"`
	CreatedDate       string             `json:"createdDate"`
	RFQStatus         RFQStatus          `json:"rfqStatus"`
	QuotationType     QuotationType      `json:"quotationType"`
	LinkedQuotationID *int64             `json:"linkedQuotationId,omitempty"`
	Notes             string             `json:"notes"`
	QuotationProducts []QuotationProduct `json:"quotationProducts"`
}

// IsRequest reports whether q is an admin RFQ (as opposed to a supplier quote).
func (q *Quotation) IsRequest() bool { return q.QuotationType == QuotationRequest }

type QuotationProduct struct {
	ID          int64   `json:"id"`
	QuotationID int64   `json:"quotationId"`
	ProductID   int64   `json:"productId"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// NewQuotation is the create payload for both RFQs and quotes; the server
// assigns id, createdDate and the initial Pending status.
type NewQuotation struct {
	AdminID           int64              `json:"adminId"`
	SupplierID        int64              `json:"supplierId"`
	QuotationType     QuotationType      `json:"quotationType"`
	LinkedQuotationID *int64             `json:"linkedQuotationId,omitempty"`
	Notes             string             `json:"notes"`
	QuotationProducts []QuotationProduct `json:"quotationProducts"`
}

type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	CompanyName string `json:"companyName"`
	Role        int    `json:"role"`
}

type LoginResult struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	CompanyName string `json:"companyName"`
	Token       string `json:"token"`
}

// User builds the profile carried by a login response.
func (l LoginResult) User() User {
	return User{ID: l.ID, Username: l.Username, Email: l.Email, Role: l.Role, CompanyName: l.CompanyName}
}
