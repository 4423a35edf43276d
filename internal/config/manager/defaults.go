package manager

const (
	defaultVariant           = VariantManager
	defaultBech32Prefix      = "paloma"
	defaultRetryDelay        = 30
	defaultPusdDenomTemplate = "factory/%s/upusd"
)
