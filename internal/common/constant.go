package common

// TokenTypeBearer is the token_type discriminator returned by /login.
const TokenTypeBearer = "bearer"

// AuthorizationHeaderName carries "Bearer <token>" on authenticated requests.
const AuthorizationHeaderName = "Authorization"
