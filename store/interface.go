package store

// Fixed keys under which the storefront persists its client-side state.
// Sessions for the two roles never share a key, so revoking one cannot
// disturb the other.
const (
	KeyUserToken  = "token.user"
	KeyAdminToken = "token.admin"
	KeyUserEmail  = "email.user"
	KeyAdminEmail = "email.admin"
	KeyCart       = "cart"
)

// Store is durable key-value storage for session tokens and the cart.
// Set must not return before the write is durable; callers rely on the
// persisted state matching memory after every mutation.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error

	Close() error
}
